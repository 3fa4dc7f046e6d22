package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

func (s *Service) Backup(ctx context.Context, stdOut io.Writer) error {
	path, err := s.Store.Backup(ctx)

	if err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Backed up to %s\n", path)

	return nil
}

func (s *Service) BackupsList(stdOut io.Writer) error {
	list, err := s.Store.Backups()

	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintf(stdOut, "No backups\n")
		return nil
	}

	w := tabwriter.NewWriter(stdOut, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSIZE\tSHA256\tPATH")

	for _, backup := range list {
		fmt.Fprintf(w, "%s\t%d\t%.12s\t%s\n", backup.CreatedAt.Local().Format(time.DateTime), backup.Size, backup.SHA256, backup.Path)
	}

	return w.Flush()
}

func (s *Service) BackupsTrim(stdOut io.Writer, keep int) error {
	removed, err := s.Store.TrimBackups(keep)

	if err != nil {
		return err
	}

	for _, backup := range removed {
		fmt.Fprintf(stdOut, "Removed %s\n", backup.Path)
	}

	fmt.Fprintf(stdOut, "Removed %d backups\n", len(removed))

	return nil
}

// Revert restores the latest backup over the configuration file.
func (s *Service) Revert(ctx context.Context, stdOut io.Writer) error {
	if err := s.Store.Revert(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdOut, "Restored the latest backup\n")

	return nil
}
