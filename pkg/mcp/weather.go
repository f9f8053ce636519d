package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/entrhq/webpilot/pkg/weather"
)

// registerWeatherTools adds the NWS-backed weather tools.
func (s *Server) registerWeatherTools(client *weather.Client) {
	s.mcp.AddTool(mcp.NewTool("get_weather",
		mcp.WithDescription("Get the current weather conditions for a US location by coordinates."),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude of the location (e.g., 38.8951 for Washington, DC)"),
		),
		mcp.WithNumber("lon",
			mcp.Required(),
			mcp.Description("Longitude of the location (e.g., -77.0364 for Washington, DC)"),
		),
		mcp.WithString("city",
			mcp.Description("Optional city name, echoed back in the result for reference"),
		),
	), s.handleGetWeather(client))

	s.mcp.AddTool(mcp.NewTool("get_forecast",
		mcp.WithDescription("Get the weather forecast for a US location by coordinates. Periods alternate between day and night."),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude of the location"),
		),
		mcp.WithNumber("lon",
			mcp.Required(),
			mcp.Description("Longitude of the location"),
		),
		mcp.WithNumber("periods",
			mcp.Description("Number of forecast periods to return (1-14). Default: 1"),
		),
	), s.handleGetForecast(client))

	s.mcp.AddTool(mcp.NewTool("get_alerts",
		mcp.WithDescription("Get active weather alerts for a US state."),
		mcp.WithString("state",
			mcp.Description("Two-letter US state code (e.g., 'CA', 'NY'). Default: 'DC'"),
		),
	), s.handleGetAlerts(client))
}

// validateCoordinates rejects values outside the WGS84 range before they
// reach the API.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %g out of range (-90 to 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %g out of range (-180 to 180)", lon)
	}
	return nil
}

func (s *Server) handleGetWeather(client *weather.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("lat")
		if err != nil {
			return mcp.NewToolResultError("lat is required and must be a number"), nil
		}
		lon, err := request.RequireFloat("lon")
		if err != nil {
			return mcp.NewToolResultError("lon is required and must be a number"), nil
		}
		if err := validateCoordinates(lat, lon); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		conditions, err := client.Current(ctx, lat, lon, request.GetString("city", ""))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("failed to fetch weather", err), nil
		}

		location := fmt.Sprintf("%g, %g", conditions.Lat, conditions.Lon)
		if conditions.City != "" {
			location = fmt.Sprintf("%s (%g, %g)", conditions.City, conditions.Lat, conditions.Lon)
		}

		result := fmt.Sprintf(`Current Weather

Location: %s
Period: %s
Temperature: %d°%s
Conditions: %s`,
			location,
			conditions.Period,
			conditions.Temperature,
			conditions.Unit,
			conditions.Condition,
		)

		return mcp.NewToolResultText(result), nil
	}
}

func (s *Server) handleGetForecast(client *weather.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lat, err := request.RequireFloat("lat")
		if err != nil {
			return mcp.NewToolResultError("lat is required and must be a number"), nil
		}
		lon, err := request.RequireFloat("lon")
		if err != nil {
			return mcp.NewToolResultError("lon is required and must be a number"), nil
		}
		if err := validateCoordinates(lat, lon); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		periods := request.GetInt("periods", 1)
		if periods < 1 || periods > 14 {
			return mcp.NewToolResultError("periods must be between 1 and 14"), nil
		}

		forecast, err := client.Forecast(ctx, lat, lon, periods)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("failed to fetch forecast", err), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Forecast for %g, %g (%d period(s)):\n", lat, lon, len(forecast))
		for _, period := range forecast {
			fmt.Fprintf(&b, "\n%s: %d°%s, %s", period.Period, period.Temperature, period.Unit, period.Condition)
		}

		return mcp.NewToolResultText(b.String()), nil
	}
}

func (s *Server) handleGetAlerts(client *weather.Client) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		state := request.GetString("state", "DC")

		alerts, err := client.Alerts(ctx, state)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("failed to fetch alerts", err), nil
		}

		if len(alerts) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No active weather alerts for %s.", strings.ToUpper(strings.TrimSpace(state)))), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "%d active alert(s) for %s:\n", len(alerts), strings.ToUpper(strings.TrimSpace(state)))
		for i, alert := range alerts {
			fmt.Fprintf(&b, "\n%d. %s\n   %s\n", i+1, alert.Event, alert.Headline)
			if alert.Description != "" {
				description := alert.Description
				if len(description) > 500 {
					description = description[:500] + "..."
				}
				fmt.Fprintf(&b, "   %s\n", strings.ReplaceAll(description, "\n", "\n   "))
			}
		}

		return mcp.NewToolResultText(b.String()), nil
	}
}
