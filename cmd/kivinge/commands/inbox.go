// Copyright 2026 The Kivinge Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/kivinge/kivinge/cmd/kivinge/cli"
	"github.com/kivinge/kivinge/lib/kivra"
)

// ListCommand returns the "kivinge list" command: print the inbox as a
// table, one row per message.
func ListCommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "list",
		Summary: "List inbox messages",
		Usage:   "kivinge list [flags]",
		Examples: []cli.Example{
			{Description: "List the inbox using fixture data", Command: "kivinge list --mock"},
		},
		Flags: flags.flagSet("list"),
		Run: func(args []string) error {
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.authenticatedClient()
			if err != nil {
				return err
			}

			listing, err := client.ListInbox(context.Background())
			if err != nil {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(writer, "ID\tDATE\tSENDER\tSUBJECT\tSTATUS")
			for _, entry := range listing {
				status := entry.Item.Status
				if entry.Item.Payable && entry.Item.PaymentStatus != "" {
					status += "," + entry.Item.PaymentStatus
				}
				fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\n",
					entry.ID,
					entry.Item.CreatedAt.Format("2006-01-02"),
					entry.Item.SenderName,
					entry.Item.Subject,
					status,
				)
			}
			return writer.Flush()
		},
	}
}

// ViewCommand returns the "kivinge view" command: print one message's
// details and its attachment names.
func ViewCommand() *cli.Command {
	var flags commonFlags
	var markRead bool
	commonSet := flags.flagSet("view")
	return &cli.Command{
		Name:    "view",
		Summary: "Show a message and its attachments",
		Usage:   "kivinge view <id> [flags]",
		Examples: []cli.Example{
			{Description: "Show message 3 and mark it as read", Command: "kivinge view 3 --read"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := commonSet()
			flagSet.BoolVar(&markRead, "read", false, "mark the message as read after viewing")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: kivinge view <id>")
			}
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.authenticatedClient()
			if err != nil {
				return err
			}
			ctx := context.Background()

			entry, err := resolveEntry(ctx, client, args[0])
			if err != nil {
				return err
			}
			details, err := client.GetItemDetails(ctx, entry.Item.Key)
			if err != nil {
				return err
			}

			fmt.Printf("Subject: %s\n", details.Subject)
			fmt.Printf("From:    %s\n", details.SenderName)
			fmt.Printf("Date:    %s\n", details.CreatedAt.Format("2006-01-02 15:04"))
			if entry.Item.Payable {
				fmt.Printf("Amount:  %s %s", entry.Item.Amount, entry.Item.Currency)
				if entry.Item.DueDate != nil {
					fmt.Printf(" (due %s)", entry.Item.DueDate.Format("2006-01-02"))
				}
				fmt.Println()
			}

			fmt.Println("\nAttachments:")
			for index, attachment := range details.Parts {
				name, ok := details.AttachmentName(index)
				if !ok {
					continue
				}
				fmt.Printf("  [%d] %s (%d bytes)\n", index, name, attachment.Size)
			}

			if markRead {
				if err := client.MarkAsRead(ctx, entry.Item.Key); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// DownloadCommand returns the "kivinge download" command: save one
// attachment to disk.
func DownloadCommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "download",
		Summary: "Save an attachment to disk",
		Usage:   "kivinge download <id> <attachment> [directory] [flags]",
		Examples: []cli.Example{
			{Description: "Save the first attachment of message 3", Command: "kivinge download 3 0"},
			{Description: "Save into ~/Documents", Command: "kivinge download 3 0 ~/Documents"},
		},
		Flags: flags.flagSet("download"),
		Run: func(args []string) error {
			if len(args) < 2 || len(args) > 3 {
				return fmt.Errorf("usage: kivinge download <id> <attachment> [directory]")
			}
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.authenticatedClient()
			if err != nil {
				return err
			}

			directory := app.config.DownloadDir
			if len(args) == 3 {
				directory = args[2]
			}

			path, err := downloadAttachment(context.Background(), client, args[0], args[1], directory)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// OpenCommand returns the "kivinge open" command: download an
// attachment to a temporary file and hand it to the desktop opener.
func OpenCommand() *cli.Command {
	var flags commonFlags
	return &cli.Command{
		Name:    "open",
		Summary: "Open an attachment with the default application",
		Usage:   "kivinge open <id> <attachment> [flags]",
		Flags:   flags.flagSet("open"),
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: kivinge open <id> <attachment>")
			}
			app, err := newApp(flags)
			if err != nil {
				return err
			}
			client, err := app.authenticatedClient()
			if err != nil {
				return err
			}

			directory, err := os.MkdirTemp("", "kivinge-")
			if err != nil {
				return err
			}
			path, err := downloadAttachment(context.Background(), client, args[0], args[1], directory)
			if err != nil {
				return err
			}

			command := exec.Command("xdg-open", path)
			command.Stdout = os.Stdout
			command.Stderr = os.Stderr
			if err := command.Run(); err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			return nil
		},
	}
}

// resolveEntry parses a sequence number argument and finds the
// matching entry in a fresh listing.
func resolveEntry(ctx context.Context, client kivra.Client, argument string) (kivra.InboxEntry, error) {
	id, err := strconv.ParseUint(argument, 10, 32)
	if err != nil {
		return kivra.InboxEntry{}, fmt.Errorf("invalid message id %q", argument)
	}

	listing, err := client.ListInbox(ctx)
	if err != nil {
		return kivra.InboxEntry{}, err
	}
	for _, entry := range listing {
		if entry.ID == uint32(id) {
			return entry, nil
		}
	}
	return kivra.InboxEntry{}, fmt.Errorf("no message with id %d (run 'kivinge list')", id)
}

// downloadAttachment fetches one attachment by message id and
// attachment position and writes it under directory using the
// synthesized file name. Returns the written path.
func downloadAttachment(ctx context.Context, client kivra.Client, idArgument, attachmentArgument, directory string) (string, error) {
	entry, err := resolveEntry(ctx, client, idArgument)
	if err != nil {
		return "", err
	}

	index, err := strconv.Atoi(attachmentArgument)
	if err != nil {
		return "", fmt.Errorf("invalid attachment index %q", attachmentArgument)
	}

	details, err := client.GetItemDetails(ctx, entry.Item.Key)
	if err != nil {
		return "", err
	}
	name, ok := details.AttachmentName(index)
	if !ok {
		return "", fmt.Errorf("message %d has no attachment %d", entry.ID, index)
	}
	attachment := details.Parts[index]

	var data []byte
	switch {
	case attachment.Body != nil:
		data = []byte(*attachment.Body)
	case attachment.Key != nil:
		data, err = client.DownloadAttachment(ctx, entry.Item.Key, *attachment.Key)
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("attachment %d of message %d has no content", index, entry.ID)
	}

	path := filepath.Join(directory, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
