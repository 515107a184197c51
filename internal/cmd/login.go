package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsroomkit/newsroomkit/internal/config"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the CMS and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.Get().SessionFile == "" {
			fmt.Println("Warning: no session_file configured, the session will not outlive this process.")
		}

		user, err := newClient().Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", user.Name, user.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Drop the local session",
	Run: func(cmd *cobra.Command, args []string) {
		newClient().Logout()
		fmt.Println("Logged out.")
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
