// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/JoniSt/sail-go"
	"github.com/spf13/cobra"
)

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func mustInitRegistry(cmd *cobra.Command) {
	searchPaths, _ := cmd.Flags().GetStringArray("codecs-path")
	if err := sail.InitRegistry(searchPaths...); err != nil {
		if sail.StatusOf(err) != sail.StatusAlreadyInitialized {
			log.Fatalf("failed to initialize codec registry: %v", err)
		}
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe <file>",
		Short: "Identify an image file's format and report its leading frame",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mustInitRegistry(cmd)
			img, ci, err := sail.Probe(sail.PathSource{Path: args[0]})
			if err != nil {
				log.Fatalf("probe failed: %v", err)
			}
			fmt.Println(prettyPrint(map[string]interface{}{
				"codec": ci.Name,
				"image": img,
			}))
		},
	}
}

func newListCodecsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-codecs",
		Short: "List every codec found on the search path",
		Run: func(cmd *cobra.Command, args []string) {
			mustInitRegistry(cmd)
			codecs, err := sail.Enumerate()
			if err != nil {
				log.Fatalf("failed to enumerate codecs: %v", err)
			}
			fmt.Println(prettyPrint(codecs))
		},
	}
}

func newDecodeAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode-all <file>",
		Short: "Decode every frame of an image and report per-frame metadata",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			mustInitRegistry(cmd)

			_, ci, err := sail.Probe(sail.PathSource{Path: args[0]})
			if err != nil {
				log.Fatalf("probe failed: %v", err)
			}

			s, err := sail.StartReadingFile(args[0], ci)
			if err != nil {
				log.Fatalf("failed to start reading session: %v", err)
			}
			defer s.Stop()

			frame := 0
			for {
				img, err := s.ReadNextFrame()
				if sail.IsNoMoreFrames(err) {
					break
				}
				if err != nil {
					log.Fatalf("failed to read frame %d: %v", frame, err)
				}
				fmt.Printf("frame %d: %dx%d pixel_format=%d\n", frame, img.Width, img.Height, img.PixelFormat)
				frame++
			}
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "sail-probe",
		Short: "Inspect and decode images through the SAIL codec registry",
		Long:  "sail-probe identifies image formats and decodes their frames through dynamically loaded SAIL codec modules.",
	}

	rootCmd.PersistentFlags().StringArray("codecs-path", nil, "codec search path, used instead of the environment's search paths (repeatable)")

	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newListCodecsCmd())
	rootCmd.AddCommand(newDecodeAllCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
