package main

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/quic-go/quic-go/http3"

	"github.com/zsiec/vtc/internal/api"
	"github.com/zsiec/vtc/internal/cache"
	"github.com/zsiec/vtc/internal/errors"
)

func runQuery(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("query", stderr)
	server := fs.String("server", "https://localhost:8443", "Base URL of the vtc server")
	rateName := fs.String("rate", "", "Framerate, server default when empty")
	kind := fs.String("kind", api.KindText, "Value kind: text, frames, seconds, rational or ticks")
	insecure := fs.Bool("insecure", false, "Skip TLS certificate verification")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected exactly one value, got %d", fs.NArg())
	}

	transport := &http3.RoundTripper{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: *insecure},
	}
	defer transport.Close()

	client := &http.Client{Transport: transport, Timeout: *timeout}

	entry, err := query(client, *server, api.ConvertRequest{
		Value: fs.Arg(0),
		Kind:  *kind,
		Rate:  api.RateParam{Value: *rateName},
	})
	if err != nil {
		return err
	}

	rows := [][2]string{
		{"Rate", entry.Rate},
		{"Timecode", entry.Timecode},
		{"Frames", fmt.Sprintf("%d", entry.Frames)},
		{"Seconds", entry.Seconds},
		{"Rational", entry.Rational},
		{"Runtime", entry.Runtime},
		{"Feet+Frames", entry.FeetAndFrames},
		{"Premiere Ticks", fmt.Sprintf("%d", entry.PremiereTicks)},
	}
	for _, r := range rows {
		fmt.Fprintf(stdout, "%-16s%s\n", r[0], r[1])
	}
	return nil
}

// query posts a conversion to the server and decodes the result.
func query(client *http.Client, server string, req api.ConvertRequest) (*cache.Entry, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(server, "/") + "/api/v1/timecode"
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp errors.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("server returned %s", resp.Status)
		}
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, errResp.Error.Message)
	}

	var entry cache.Entry
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &entry, nil
}
