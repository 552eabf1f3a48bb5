package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kimm528/ringfitmanager/devices"
	"github.com/kimm528/ringfitmanager/users"
)

var devicesAssignParams = struct {
	DeviceId string
	UserId   string
}{}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Ring devices",
	Long:  "The devices command is used to manage the rings registered at the vendor",
}

var devicesSyncCmd = &cobra.Command{
	Use:   "sync",
	Args:  cobra.NoArgs,
	Short: "Import vendor devices",
	Long:  "The sync command registers every device reported by the vendor that is not known yet",
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(syncDevices)
	},
}

var devicesAssignCmd = &cobra.Command{
	Use:   "assign <deviceId> <userId>",
	Args:  cobra.ExactArgs(2),
	Short: "Assign a device to a user",
	Long:  "The assign command hands a device to a user. A device worn by someone else is moved",
	RunE: func(cmd *cobra.Command, args []string) error {
		devicesAssignParams.DeviceId = args[0]
		devicesAssignParams.UserId = args[1]
		return Run(assignDevice)
	},
}

func syncDevices(devicesService devices.Service) error {
	result, err := devicesService.Sync(context.Background())
	if err != nil {
		return err
	}

	fmt.Println(styleSuccess.Render(fmt.Sprintf("Added %d devices", len(result.Added))))
	for _, mac := range result.Added {
		fmt.Printf("  + %s\n", mac)
	}
	fmt.Printf("%d devices were already registered\n", len(result.Known))
	if len(result.Missing) > 0 {
		fmt.Println(styleError.Render(fmt.Sprintf("%d registered devices are unknown to the vendor: %s", len(result.Missing), strings.Join(result.Missing, ", "))))
	}

	return nil
}

func assignDevice(devicesService devices.Service, usersService users.Service) error {
	ctx := context.Background()
	user, err := usersService.Get(ctx, devicesAssignParams.UserId)
	if err != nil {
		return err
	}

	device, err := devicesService.Assign(ctx, devicesAssignParams.DeviceId, user.IdHex())
	if err != nil {
		return err
	}

	fmt.Println(styleSuccess.Render(fmt.Sprintf("Device %s is now worn by %s", device.Mac, user.Name)))
	return nil
}

func init() {
	devicesCmd.AddCommand(devicesSyncCmd)
	devicesCmd.AddCommand(devicesAssignCmd)
	rootCmd.AddCommand(devicesCmd)
}
