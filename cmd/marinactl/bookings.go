package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
)

func newAPIClient(apiURL string) *resty.Client {
	return resty.New().
		SetBaseURL(apiURL).
		SetTimeout(10 * time.Second).
		SetHeader("Content-Type", "application/json")
}

func runBook(apiURL, resourceID, holderID, start, end string, out io.Writer) error {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return fmt.Errorf("start must be RFC3339: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return fmt.Errorf("end must be RFC3339: %w", err)
	}

	resp, err := newAPIClient(apiURL).R().
		SetBody(map[string]interface{}{
			"resourceId": resourceID,
			"holderId":   holderID,
			"startTime":  startTime,
			"endTime":    endTime,
		}).
		Post("/api/bookings")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runCancel(apiURL, reservationID, holderID string, out io.Writer) error {
	resp, err := newAPIClient(apiURL).R().
		SetQueryParam("holderId", holderID).
		Delete("/api/bookings/" + reservationID)
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runListBookings(apiURL, resourceID string, out io.Writer) error {
	resp, err := newAPIClient(apiURL).R().
		Get("/api/resources/" + resourceID + "/bookings")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

func runDayAvailability(apiURL, resourceID, date string, out io.Writer) error {
	resp, err := newAPIClient(apiURL).R().
		SetQueryParam("date", date).
		Get("/api/resources/" + resourceID + "/availability")
	if err != nil {
		return err
	}
	return printResponse(resp, out)
}

// printResponse pretty-prints the API response body and surfaces non-2xx
// statuses as errors.
func printResponse(resp *resty.Response, out io.Writer) error {
	var pretty json.RawMessage
	body := resp.Body()
	if json.Valid(body) {
		var buf interface{}
		_ = json.Unmarshal(body, &buf)
		pretty, _ = json.MarshalIndent(buf, "", "  ")
	} else {
		pretty = body
	}
	if resp.IsError() {
		return fmt.Errorf("http %d: %s", resp.StatusCode(), string(pretty))
	}
	_, err := fmt.Fprintln(out, string(pretty))
	return err
}
