package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

type daemonStatus struct {
	Running         bool   `json:"running"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
	Sessions        int    `json:"sessions"`
	PendingCleanups int    `json:"pending_cleanups"`
	LockFilePath    string `json:"lock_file_path"`
}

func newStatusCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFlag)
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 10 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet,
				"http://"+cfg.Paths.APIBind+"/api/status", nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("daemon not reachable at %s: %w", cfg.Paths.APIBind, err)
			}
			defer resp.Body.Close()

			var status daemonStatus
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			rows := [][]string{
				{"Running", strconv.FormatBool(status.Running)},
				{"FFmpeg", availability(status.FFmpegAvailable)},
				{"Sessions", strconv.Itoa(status.Sessions)},
				{"Pending cleanups", strconv.Itoa(status.PendingCleanups)},
				{"Lock file", status.LockFilePath},
			}

			out := cmd.OutOrStdout()
			if stdoutIsTerminal() {
				fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows))
			} else {
				for _, row := range rows {
					fmt.Fprintf(out, "%s: %s\n", row[0], row[1])
				}
			}
			return nil
		},
	}
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "missing"
}
