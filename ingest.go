package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"fabtrack/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newIngestCmd() *cobra.Command {
	var (
		workspaceID string
		uploadedBy  string
		stopOnError bool
	)
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Create one part per file with the file as its first revision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			files := make([]service.IngestFile, 0, len(args))
			for _, path := range args {
				f, err := service.IngestPath(path)
				if err != nil {
					return err
				}
				files = append(files, f)
			}

			results, err := a.services.Ingest.Ingest(ctx, service.IngestRequest{
				WorkspaceID: workspaceID,
				UploadedBy:  uploadedBy,
				Files:       files,
				StopOnError: stopOnError,
			})
			if results == nil && err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				switch r.Status {
				case service.IngestCreated:
					fmt.Fprintf(out, "%-10s %s  %s (%s, v%d)\n", r.Status, r.Part.UniqueID, r.FileName, r.Stage, r.Revision.VersionNumber)
				case service.IngestFailed:
					failed++
					fmt.Fprintf(out, "%-10s %s: %s\n", r.Status, r.FileName, r.Error)
				default:
					fmt.Fprintf(out, "%-10s %s\n", r.Status, r.FileName)
				}
			}
			if err != nil {
				return err
			}
			if failed > 0 {
				log.Warn().Int("failed", failed).Msg("some files were not ingested")
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&workspaceID, "workspace", "w", "", "target workspace id (default: oldest workspace)")
	cmd.Flags().StringVar(&uploadedBy, "uploaded-by", "", "name recorded on every revision")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "abandon remaining files after the first failure")
	return cmd
}
