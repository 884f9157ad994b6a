package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/emrgen/headline"
	v1 "github.com/emrgen/headline/apis/v1"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCategoriesCmd())
	rootCmd.AddCommand(createHeadlineCmd())
	rootCmd.AddCommand(getHeadlineCmd())
	rootCmd.AddCommand(listHeadlinesCmd())
	rootCmd.AddCommand(updateHeadlineCmd())
	rootCmd.AddCommand(deleteHeadlineCmd())
}

func listCategoriesCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "categories",
		Short: "list the headline categories",
		Run: func(cmd *cobra.Command, args []string) {
			categories, err := newClient().ListCategories(context.Background())
			if err != nil {
				printError(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Category"})
			for _, category := range categories {
				table.Append([]string{category})
			}
			table.Render()
		},
	}

	return command
}

func createHeadlineCmd() *cobra.Command {
	var title string
	var category string
	var description string
	var forwardRefs []uint
	var backwardRefs []uint

	var required = []string{"title"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a headline",
		Example: "headline create -t <title> -c <category> -d <description> -f 1,2 -b 3",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			req := &v1.CreateHeadlineRequest{Title: &title}
			if cmd.Flag("category").Changed {
				req.Category = v1.NewOptionalString(&category)
			}
			if cmd.Flag("description").Changed {
				req.Description = v1.NewOptionalString(&description)
			}
			if cmd.Flag("forward-refs").Changed {
				req.ForwardRefs = &forwardRefs
			}
			if cmd.Flag("backward-refs").Changed {
				req.BackwardRefs = &backwardRefs
			}

			h, err := newClient().CreateHeadline(context.Background(), req)
			if err != nil {
				printError(err)
				return
			}

			color.Green("headline created with id: %d", h.Id)
			printHeadline(h)
		},
	}

	command.Flags().StringVarP(&title, "title", "t", "", "title of the headline (required)")
	command.Flags().StringVarP(&category, "category", "c", "", "category of the headline")
	command.Flags().StringVarP(&description, "description", "d", "", "description of the headline")
	command.Flags().UintSliceVarP(&forwardRefs, "forward-refs", "f", nil, "ids this headline refers to")
	command.Flags().UintSliceVarP(&backwardRefs, "backward-refs", "b", nil, "ids referring to this headline")

	command.Flags().SortFlags = false

	return command
}

func getHeadlineCmd() *cobra.Command {
	var id uint

	var required = []string{"id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a headline",
		Example: "headline get -i <id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			h, err := newClient().GetHeadline(context.Background(), id)
			if err != nil {
				printError(err)
				return
			}

			printHeadline(h)
		},
	}

	command.Flags().UintVarP(&id, "id", "i", 0, "headline id (required)")

	return command
}

func listHeadlinesCmd() *cobra.Command {
	var categories string

	command := &cobra.Command{
		Use:     "list",
		Short:   "list headlines",
		Example: "headline list -c sound-cd,book-paper",
		Run: func(cmd *cobra.Command, args []string) {
			var filter []string
			if categories != "" {
				filter = strings.Split(categories, ",")
			}

			headlines, err := newClient().ListHeadlines(context.Background(), filter...)
			if err != nil {
				printError(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Category", "Forward", "Backward"})
			for _, h := range headlines {
				table.Append([]string{
					strconv.FormatUint(uint64(h.Id), 10),
					h.Title,
					deref(h.Category),
					refList(h.ForwardRefs),
					refList(h.BackwardRefs),
				})
			}
			table.Render()
		},
	}

	command.Flags().StringVarP(&categories, "categories", "c", "", "comma separated categories")

	return command
}

func updateHeadlineCmd() *cobra.Command {
	var id uint
	var title string
	var category string
	var description string
	var clearCategory bool
	var clearDescription bool
	var forwardRefs []uint
	var backwardRefs []uint

	var required = []string{"id", "title"}

	command := &cobra.Command{
		Use:     "update",
		Short:   "update a headline",
		Long:    "update a headline, flags left out keep their stored value",
		Example: "headline update -i <id> -t <title> -f 2,3 --clear-description",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			req := &v1.UpdateHeadlineRequest{Id: id, Title: &title}
			switch {
			case clearCategory:
				req.Category = v1.NewOptionalString(nil)
			case cmd.Flag("category").Changed:
				req.Category = v1.NewOptionalString(&category)
			}
			switch {
			case clearDescription:
				req.Description = v1.NewOptionalString(nil)
			case cmd.Flag("description").Changed:
				req.Description = v1.NewOptionalString(&description)
			}
			if cmd.Flag("forward-refs").Changed {
				req.ForwardRefs = &forwardRefs
			}
			if cmd.Flag("backward-refs").Changed {
				req.BackwardRefs = &backwardRefs
			}

			h, err := newClient().UpdateHeadline(context.Background(), req)
			if err != nil {
				printError(err)
				return
			}

			color.Green("headline %d updated", h.Id)
			printHeadline(h)
		},
	}

	command.Flags().UintVarP(&id, "id", "i", 0, "headline id (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "title of the headline (required)")
	command.Flags().StringVarP(&category, "category", "c", "", "category of the headline")
	command.Flags().StringVarP(&description, "description", "d", "", "description of the headline")
	command.Flags().BoolVar(&clearCategory, "clear-category", false, "set the category to null")
	command.Flags().BoolVar(&clearDescription, "clear-description", false, "set the description to null")
	command.Flags().UintSliceVarP(&forwardRefs, "forward-refs", "f", nil, "replace the forward refs, empty clears them")
	command.Flags().UintSliceVarP(&backwardRefs, "backward-refs", "b", nil, "replace the backward refs, empty clears them")

	command.Flags().SortFlags = false

	return command
}

func deleteHeadlineCmd() *cobra.Command {
	var id uint

	var required = []string{"id"}

	command := &cobra.Command{
		Use:     "delete",
		Short:   "delete a headline",
		Example: "headline delete -i <id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			if err := newClient().DeleteHeadline(context.Background(), id); err != nil {
				printError(err)
				return
			}

			color.Green("headline %d deleted", id)
		},
	}

	command.Flags().UintVarP(&id, "id", "i", 0, "headline id (required)")

	return command
}

func printHeadline(h *v1.Headline) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Title", "Category", "Forward", "Backward"})
	table.Append([]string{
		strconv.FormatUint(uint64(h.Id), 10),
		h.Title,
		deref(h.Category),
		refList(h.ForwardRefs),
		refList(h.BackwardRefs),
	})
	table.Render()
	printField("Description", deref(h.Description))
	printField("Updated", h.UpdatedAt.Format("2006-01-02 15:04:05"))
}

func printError(err error) {
	var apiErr *headline.APIError
	if !errors.As(err, &apiErr) {
		logrus.Error(err)
		return
	}

	color.Red("%d: %s", apiErr.StatusCode, apiErr.Message)
	for field, messages := range apiErr.Fields {
		for _, msg := range messages {
			printField(field, msg)
		}
	}
}

func refList(refs []*v1.HeadlineRef) string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, strconv.FormatUint(uint64(ref.Id), 10))
	}
	return strings.Join(ids, ",")
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

// checkMissingFlags checks if the required flags are set and returns true if any is missing
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if !cmd.Flag(required).Changed {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}
