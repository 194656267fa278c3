// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Orchardsense

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/orchardsense/pomolog/pkg/pomona"
	"github.com/spf13/cobra"
)

var terminalCmd = &cobra.Command{
	Use:   "terminal",
	Short: "Exchange free-form text with the probe",
	Long: `Line-based terminal for the probe's free-text channel.

Each line typed is encoded and sent to the probe as-is, with no protocol
framing. Inbound traffic is classified and printed: text frames as text,
other bytes as a hex dump, and saved-data pages as a one-line summary
(use the fetch command for an actual transfer).

Type Ctrl+D or ".quit" to exit.`,
	RunE: runTerminal,
}

func init() {
	rootCmd.AddCommand(terminalCmd)
}

func runTerminal(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("Pomolog - Probe Terminal\n")
	fmt.Printf("Connection: %s\n\n", connInfo)

	// Print inbound traffic while the operator types.
	done := make(chan struct{})
	go func() {
		fr := newFrameReader(conn)
		for {
			frame, err := fr.ReadFrame()
			if err != nil {
				select {
				case <-done:
				default:
					log.Printf("Read error: %v", err)
				}
				return
			}

			c, cerr := pomona.Classify(frame)
			switch {
			case cerr != nil:
				fmt.Printf("<< MALFORMED: %v\n", cerr)
			case c.Kind == pomona.FrameDataPage:
				fmt.Printf("<< %s\n", pomona.FormatClassification(c))
			case c.Kind == pomona.FrameRaw:
				fmt.Printf("<< %s\n", c.Text)
			}
		}
	}()
	defer close(done)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == ".quit" {
			return nil
		}

		data, err := pomona.EncodeText(line)
		if errors.Is(err, pomona.ErrEmptyText) {
			continue
		}
		if _, err := conn.Write(data); err != nil {
			return fmt.Errorf("send failed: %v", err)
		}
	}
	return scanner.Err()
}
