// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Orchardsense

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/orchardsense/pomolog/pkg/pomona"
	"github.com/spf13/cobra"
)

var (
	fetchTimeout int
	fetchOutput  string
	fetchFormat  string
	fetchQuiet   bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Retrieve saved measurement records from the probe",
	Long: `Retrieve the probe's saved measurement records page by page.

The probe answers a start-fetch command with pages of up to 50 records and is
asked for the next page until it signals the end of the transfer (an empty
page, a terminator slot, or a short page). Partial results are printed even
when the transfer fails mid-way.

Unstructured probe output received during the transfer is shown as text.

Examples:
  # Fetch over serial and print a table
  pomolog fetch --port /dev/ttyUSB0

  # Fetch over a WebSocket bridge and export to CBOR
  pomolog fetch --url ws://bridge.local/pomona --output records.cbor --format cbor

Exit codes:
  0 - Transfer complete
  1 - Transfer failed (partial records may still have been printed/exported)
  2 - Connection error`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().IntVar(&fetchTimeout, "timeout", 15, "Seconds to wait for each page")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "Write records to a file")
	fetchCmd.Flags().StringVar(&fetchFormat, "format", "json", "Export format: json or cbor")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false, "Suppress the record table")
}

func runFetch(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	fmt.Printf("Pomolog - Saved Data Fetch\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	session := pomona.NewSession(connSender{conn})

	frameCh := make(chan []byte, 16)
	errCh := make(chan error, 1)
	go func() {
		fr := newFrameReader(conn)
		for {
			frame, err := fr.ReadFrame()
			if err != nil {
				errCh <- err
				return
			}
			frameCh <- frame
		}
	}()

	if err := session.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Fetch failed: %v\n", err)
		os.Exit(1)
	}

	pageTimeout := time.Duration(fetchTimeout) * time.Second
	for session.State() == pomona.StateAwaitingPage {
		select {
		case frame := <-frameCh:
			c, err := session.HandleFrame(frame)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Page error: %v\n", err)
			} else if c.Kind == pomona.FrameRaw {
				fmt.Printf("probe: %s\n", c.Text)
			}
		case err := <-errCh:
			session.Disconnect(err)
		case <-time.After(pageTimeout):
			session.Disconnect(fmt.Errorf("no page within %s", pageTimeout))
		}
	}

	records := session.Records()
	if !fetchQuiet {
		for _, r := range records {
			fmt.Println(pomona.FormatRecord(r))
		}
		if len(records) > 0 {
			fmt.Println()
		}
	}

	if fetchOutput != "" {
		if err := writeRecords(fetchOutput, fetchFormat, records); err != nil {
			fmt.Fprintf(os.Stderr, "Export error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d records to %s (%s)\n", len(records), fetchOutput, fetchFormat)
	}

	switch session.State() {
	case pomona.StateComplete:
		fmt.Printf("Transfer complete: %d records (%s)\n",
			len(records), pomona.FormatReason(session.Reason()))
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Transfer failed after %d records: %v\n",
			len(records), session.Err())
		os.Exit(1)
		return nil
	}
}

// writeRecords exports fetched records for downstream tooling.
func writeRecords(path, format string, records []pomona.Record) error {
	var data []byte
	var err error

	switch format {
	case "json":
		data, err = json.MarshalIndent(records, "", "  ")
	case "cbor":
		data, err = cbor.Marshal(records)
	default:
		return fmt.Errorf("unknown format %q (use json or cbor)", format)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
