package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jguillaumes/go-ibmi/ibmi/users"
)

var (
	listUsersGroup    string
	listUsersPageSize int
)

var listUsersCmd = &cobra.Command{
	Use:   "list-users",
	Short: "list user profiles via QGYOLAUS, paging with a progress bar",
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := connect()
		if err != nil {
			return err
		}
		defer sess.Disconnect()

		var bar *progressbar.ProgressBar
		names, err := users.ListUsersWithProgress(sess, listUsersGroup, listUsersPageSize, func(fetched, total uint32) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "listing users")
			}
			_ = bar.Set64(int64(fetched))
		})
		if bar != nil {
			_ = bar.Close()
		}
		if err != nil {
			return err
		}

		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	listUsersCmd.Flags().StringVar(&listUsersGroup, "group", "", "group profile to filter by (default: all profiles)")
	listUsersCmd.Flags().IntVar(&listUsersPageSize, "page-size", 100, "records requested per round trip")
}
