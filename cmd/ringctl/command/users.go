package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/store"
	"github.com/kimm528/ringfitmanager/users"
)

var usersListParams = struct {
	Limit  int
	Offset int
	Search string
	Room   string
}{}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Facility users",
	Long:  "The users command is used to inspect the roster of the facility",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.NoArgs,
	Short: "List users",
	Long:  "The list command prints the users of the roster with the device they wear",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(listUsers)
	},
}

func listUsers(usersService users.Service, devicesService devices.Service) error {
	ctx := context.Background()
	page := store.DefaultPagination().
		WithLimit(usersListParams.Limit).
		WithOffset(usersListParams.Offset)
	filter := users.Filter{}
	if usersListParams.Search != "" {
		filter.Search = &usersListParams.Search
	}
	if usersListParams.Room != "" {
		filter.Room = &usersListParams.Room
	}

	result, err := usersService.List(ctx, &filter, page)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(result.Users))
	for _, u := range result.Users {
		ids = append(ids, u.IdHex())
	}
	worn, err := devicesService.List(ctx, &devices.Filter{UserIds: ids}, store.Pagination{})
	if err != nil {
		return err
	}
	macByUser := make(map[string]string, len(worn.Devices))
	for _, d := range worn.Devices {
		if d.UserId != nil {
			macByUser[*d.UserId] = d.Mac
		}
	}

	for _, user := range result.Users {
		mac := macByUser[user.IdHex()]
		fmt.Printf("%s  %-20s room %-8s device %s\n", styleDim.Render(user.IdHex()), user.Name, orEmpty(user.Room), orEmpty(&mac))
	}
	fmt.Printf("Found %v users\n", result.TotalCount)

	return nil
}

func init() {
	usersListCmd.Flags().IntVarP(&usersListParams.Limit, "limit", "l", 50, "The number of users to display")
	usersListCmd.Flags().IntVarP(&usersListParams.Offset, "offset", "o", 0, "The number of users to skip")
	usersListCmd.Flags().StringVarP(&usersListParams.Search, "search", "s", "", "Search users by name")
	usersListCmd.Flags().StringVar(&usersListParams.Room, "room", "", "Only list users of the room")

	usersCmd.AddCommand(usersListCmd)
	rootCmd.AddCommand(usersCmd)
}
