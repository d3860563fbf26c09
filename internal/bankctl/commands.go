package bankctl

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var username, password, fullName, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user and print the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(gatewayURL, token)

			var res map[string]interface{}

			err := client.do(cmd.Context(), http.MethodPost, "/api/auth/register", map[string]string{
				"username":  username,
				"password":  password,
				"full_name": fullName,
				"email":     email,
			}, &res)
			if err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cobra.CheckErr(cmd.MarkFlagRequired("username"))
	cobra.CheckErr(cmd.MarkFlagRequired("password"))
	cobra.CheckErr(cmd.MarkFlagRequired("full-name"))
	cobra.CheckErr(cmd.MarkFlagRequired("email"))

	return cmd
}

func loginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(gatewayURL, token)

			var res map[string]interface{}

			err := client.do(cmd.Context(), http.MethodPost, "/api/auth/login", map[string]string{
				"username": username,
				"password": password,
			}, &res)
			if err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cobra.CheckErr(cmd.MarkFlagRequired("username"))
	cobra.CheckErr(cmd.MarkFlagRequired("password"))

	return cmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}

	cmd.AddCommand(accountCreateCmd(), accountGetCmd(), accountMutateCmd("deposit"), accountMutateCmd("withdraw"))

	return cmd
}

func accountCreateCmd() *cobra.Command {
	var accType, currency string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account for the authorized user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(gatewayURL, token)

			var res map[string]interface{}

			err := client.do(cmd.Context(), http.MethodPost, "/api/accounts", map[string]string{
				"type":     accType,
				"currency": currency,
			}, &res)
			if err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&accType, "type", "CHECKING", "account type (CHECKING, SAVINGS, INVESTMENT)")
	cmd.Flags().StringVar(&currency, "currency", "USD", "account currency")

	return cmd
}

func accountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(gatewayURL, token)

			var res map[string]interface{}

			if err := client.do(cmd.Context(), http.MethodGet, "/api/accounts/"+args[0], nil, &res); err != nil {
				return err
			}

			return printJSON(res)
		},
	}
}

func accountMutateCmd(action string) *cobra.Command {
	var amount string

	cmd := &cobra.Command{
		Use:   action + " <account-id>",
		Short: "Apply a " + action + " to the account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(gatewayURL, token)

			var res map[string]interface{}

			err := client.do(cmd.Context(), http.MethodPut, "/api/accounts/"+args[0]+"/"+action, map[string]string{
				"amount": amount,
			}, &res)
			if err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "decimal amount")
	cobra.CheckErr(cmd.MarkFlagRequired("amount"))

	return cmd
}

func transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transaction",
		Short: "Settle and inspect transactions",
	}

	cmd.AddCommand(transactionCreateCmd(), transactionGetCmd(), transactionListCmd())

	return cmd
}

func transactionCreateCmd() *cobra.Command {
	var (
		txType, amount, source, destination, description, idempotencyKey string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a transaction for settlement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(gatewayURL, token)

			body := map[string]string{
				"type":              txType,
				"amount":            amount,
				"source_account_id": source,
			}
			if destination != "" {
				body["destination_account_id"] = destination
			}
			if description != "" {
				body["description"] = description
			}
			if idempotencyKey != "" {
				body["idempotency_key"] = idempotencyKey
			}

			var res map[string]interface{}

			if err := client.do(cmd.Context(), http.MethodPost, "/api/transactions", body, &res); err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "transaction type (DEPOSIT, WITHDRAWAL, TRANSFER)")
	cmd.Flags().StringVar(&amount, "amount", "", "decimal amount")
	cmd.Flags().StringVar(&source, "source", "", "source account id")
	cmd.Flags().StringVar(&destination, "destination", "", "destination account id (transfers)")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "client idempotency key")
	cobra.CheckErr(cmd.MarkFlagRequired("type"))
	cobra.CheckErr(cmd.MarkFlagRequired("amount"))
	cobra.CheckErr(cmd.MarkFlagRequired("source"))

	return cmd
}

func transactionGetCmd() *cobra.Command {
	var byReference bool

	cmd := &cobra.Command{
		Use:   "get <id-or-reference>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := NewClient(gatewayURL, token)

			path := "/api/transactions/" + args[0]
			if byReference {
				path = "/api/transactions/reference/" + args[0]
			}

			var res map[string]interface{}

			if err := client.do(cmd.Context(), http.MethodGet, path, nil, &res); err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().BoolVar(&byReference, "by-reference", false, "look up by reference number")

	return cmd
}

func transactionListCmd() *cobra.Command {
	var (
		account          string
		pageID, pageSize int32
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := NewClient(gatewayURL, token)

			path := "/api/transactions"
			if account != "" {
				path = "/api/transactions/account/" + account
			}
			path += fmt.Sprintf("?page_id=%d&page_size=%d", pageID, pageSize)

			var res map[string]interface{}

			if err := client.do(cmd.Context(), http.MethodGet, path, nil, &res); err != nil {
				return err
			}

			return printJSON(res)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "filter by account id (either side)")
	cmd.Flags().Int32Var(&pageID, "page-id", 1, "page number")
	cmd.Flags().Int32Var(&pageSize, "page-size", 20, "page size")

	return cmd
}
