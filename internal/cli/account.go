package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dalemusser/agreeverse/internal/authclient"
	"github.com/spf13/cobra"
)

const roleHelp = "Role: admin, coordinator, farmer or user"

func newSignupCmd() *cobra.Command {
	var (
		role string
		req  authclient.SignUpRequest
	)

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Password == "" {
				p, err := prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				req.Password = p
			}
			if err := client.SignUp(cmd.Context(), role, req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account for %s\n", strings.ToLower(role), req.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "user", roleHelp)
	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password (prompted if omitted)")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "10-digit phone (farmers and coordinators)")
	cmd.Flags().StringVar(&req.CoordinatorID, "coordinator-id", "", "Owning coordinator (farmers)")
	cmd.Flags().StringVar(&req.AdminID, "admin-id", "", "Owning admin (coordinators)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newSigninCmd() *cobra.Command {
	var role, identifier, password string

	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := prompt(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			ident, err := client.SignIn(cmd.Context(), role, identifier, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (%s)\n", ident.Name, ident.Email, ident.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "user", roleHelp)
	cmd.Flags().StringVar(&identifier, "identifier", "", "Email, or phone for farmers and coordinators")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("identifier")
	return cmd
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Re-validate the remembered session and print the identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ident, err := client.Guard(cmd.Context())
			if errors.Is(err, authclient.ErrSignInRequired) {
				return errors.New("not signed in; run `agreectl signin`")
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:    %s\n", ident.ID)
			fmt.Fprintf(out, "Name:  %s\n", ident.Name)
			fmt.Fprintf(out, "Email: %s\n", ident.Email)
			fmt.Fprintf(out, "Role:  %s\n", ident.Role)
			if ident.Phone != "" {
				fmt.Fprintf(out, "Phone: %s\n", ident.Phone)
			}
			return nil
		},
	}
}

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Print the role carried by the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := client.Verify(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), role)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !client.Logout(cmd.Context()) {
				return errors.New("sign-out failed; session kept")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

// prompt reads one line from the command's input.
func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("password cannot be empty")
	}
	return line, nil
}
