// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Orchardsense

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/orchardsense/pomolog/pkg/pomona"
	"github.com/spf13/cobra"
)

var monitorDecode bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Display classified inbound traffic in human-readable format",
	Long: `Continuously classify and display inbound frames as they arrive.

Saved-data pages are decoded and shown record by record when --decode is set;
otherwise only their size is reported. Everything else is shown as text plus
a hex dump. No commands are sent; the probe is only listened to.

Supports both serial and WebSocket connections.`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&monitorDecode, "decode", false, "Decode records inside data pages")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Pomolog - Traffic Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	stats := pomona.NewStatistics()
	fr := newFrameReader(conn)

	for {
		frame, err := fr.ReadFrame()
		if err != nil {
			// For WebSocket connections, a read error usually means
			// the connection is permanently closed - exit gracefully
			if err == ErrConnectionClosed {
				log.Printf("Connection closed")
				fmt.Print(stats.String())
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		timestamp := time.Now().Format("15:04:05.000")
		c, cerr := pomona.Classify(frame)
		decoded := 0

		switch {
		case cerr != nil:
			fmt.Printf("[%s] MALFORMED: %v\n", timestamp, cerr)
		case c.Kind == pomona.FrameDataPage:
			page, derr := pomona.DecodePage(frame)
			if derr != nil {
				cerr = derr
				fmt.Printf("[%s] MALFORMED: %v\n", timestamp, derr)
				break
			}
			decoded = len(page.Records)
			fmt.Printf("[%s] %s done=%v\n", timestamp, pomona.FormatClassification(c), page.Done)
			if monitorDecode {
				for _, r := range page.Records {
					fmt.Printf("  %s\n", pomona.FormatRecord(r))
				}
			}
		case c.Kind == pomona.FrameRaw:
			fmt.Printf("[%s] %s\n", timestamp, pomona.FormatClassification(c))
		}

		stats.Update(c.Kind, decoded, cerr)
	}
}
