package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/boardsync/internal/model"
	"github.com/nhle/boardsync/internal/mutation"
)

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the boards once and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup()
			if err != nil {
				return err
			}

			c, _, p := e.services(mutation.NewNotices(1))
			res := p.Refresh(cmd.Context())
			if res.SessionExpired {
				return fmt.Errorf("session expired; run `boardsync login`")
			}
			if res.Err != nil {
				return res.Err
			}

			snap := c.Snapshot()
			fmt.Println("Boards")
			fmt.Println(strings.Repeat("=", 40))
			fmt.Printf("  %-14s %d\n", "Projects:", len(snap.Projects))
			fmt.Printf("  %-14s %d\n", "Folders:", len(snap.Folders))
			fmt.Printf("  %-14s %d\n", "Teams:", len(snap.Teams))
			fmt.Printf("  %-14s %d\n", "Unread:", c.UnreadCount())

			for _, proj := range c.Projects() {
				fmt.Printf("\n%s (%s)\n", proj.Name, folderName(snap, proj.ID))
				for _, colID := range proj.ColumnOrder {
					col := proj.Columns[colID]
					fmt.Printf("  %-20s %d\n", col.Title, len(col.TaskIDs))
				}
			}
			return nil
		},
	}
}

func folderName(snap model.Snapshot, projectID string) string {
	id := model.FolderOf(snap.Folders, projectID)
	if id == "" {
		return "uncategorized"
	}
	return snap.Folders[id].Name
}
