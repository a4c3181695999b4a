package cmd

import (
	"fmt"

	"gramsetu-be/models"
	"gramsetu-be/services"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with any role",
	Long: `Create an account directly in the store. Public registration only
creates villagers; use this to provision gram sevaks and admins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		mobile, _ := flags.GetString("mobile")
		village, _ := flags.GetString("village")
		password, _ := flags.GetString("password")
		role, _ := flags.GetString("role")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		u, err := services.CreateUser(cmd.Context(), s.Users, name, mobile, village, password, models.Role(role))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (%s)\n", u.Role, u.Name, u.ID.Hex())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)

	f := userCreateCmd.Flags()
	f.String("name", "", "display name (gram sevaks are matched on this)")
	f.String("mobile", "", "mobile number used to log in")
	f.String("village", "", "village")
	f.String("password", "", "password")
	f.String("role", string(models.GramSevak), "villager, gramsevak or admin")
	_ = userCreateCmd.MarkFlagRequired("name")
	_ = userCreateCmd.MarkFlagRequired("mobile")
	_ = userCreateCmd.MarkFlagRequired("password")
}
