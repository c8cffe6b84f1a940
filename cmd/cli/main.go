package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cashplan-cli",
		Short: "Cashplan CLI tool",
		Long:  `A command line interface for interacting with the Cashplan API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Cashplan API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}
	accountsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		Run: func(cmd *cobra.Command, args []string) {
			listAccounts()
		},
	})
	rootCmd.AddCommand(accountsCmd)

	integrityCmd := &cobra.Command{
		Use:   "integrity",
		Short: "Balance integrity operations",
	}
	integrityCmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Replay every account's history and report drift",
		Run: func(cmd *cobra.Command, args []string) {
			checkIntegrity()
		},
	})
	integrityCmd.AddCommand(&cobra.Command{
		Use:   "resolve [account-id]",
		Short: "Record an adjustment trace for a drifted account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resolveDiscrepancy(args[0])
		},
	})
	rootCmd.AddCommand(integrityCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "projection",
		Short: "Show the projected monthly cash flow",
		Run: func(cmd *cobra.Command, args []string) {
			showProjection()
		},
	})

	upcomingCmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming schedule occurrences",
		Run: func(cmd *cobra.Command, args []string) {
			until, _ := cmd.Flags().GetString("until")
			listUpcoming(until)
		},
	}
	upcomingCmd.Flags().String("until", "", "Horizon date (YYYY-MM-DD)")
	rootCmd.AddCommand(upcomingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func get(path string) map[string]any {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	return result
}

func post(path string) map[string]any {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", nil)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	return result
}

func listAccounts() {
	result := get("/api/v1/accounts")

	accounts, _ := result["accounts"].([]any)
	for _, raw := range accounts {
		account, _ := raw.(map[string]any)
		fmt.Printf("%-28s %-10s %12s  (%s)\n",
			account["name"], account["type"], account["balance"], account["id"])
	}
	fmt.Printf("Total: %v account(s)\n", result["total"])
}

func checkIntegrity() {
	result := get("/api/v1/integrity")

	discrepancies, _ := result["discrepancies"].(float64)
	accounts, _ := result["accounts"].([]any)
	for _, raw := range accounts {
		account, _ := raw.(map[string]any)
		status := "OK"
		if consistent, _ := account["consistent"].(bool); !consistent {
			status = fmt.Sprintf("DRIFT %s", account["difference"])
		}
		fmt.Printf("%-28s stored=%12s replayed=%12s  %s\n",
			account["accountName"], account["storedBalance"], account["expectedBalance"], status)
	}

	if discrepancies > 0 {
		fmt.Printf("Integrity check FAILED: %d account(s) drifted\n", int(discrepancies))
		os.Exit(1)
	}
	fmt.Println("Integrity check PASSED")
}

func resolveDiscrepancy(accountID string) {
	result := post("/api/v1/accounts/" + accountID + "/integrity/resolve")

	fmt.Printf("Account %s resolved\n", accountID)
	fmt.Printf("Stored balance:  %s\n", result["storedBalance"])
	fmt.Printf("Recorded trace:  %s\n", result["difference"])
}

func showProjection() {
	result := get("/api/v1/projections/monthly")

	fmt.Printf("Monthly income:   %s\n", result["income"])
	fmt.Printf("Monthly expenses: %s\n", result["expenses"])
	fmt.Printf("Monthly net:      %s\n", result["net"])
}

func listUpcoming(until string) {
	path := "/api/v1/schedules/upcoming"
	if until != "" {
		path += "?until=" + until
	}
	result := get(path)

	occurrences, _ := result["occurrences"].([]any)
	for _, raw := range occurrences {
		occurrence, _ := raw.(map[string]any)
		fmt.Printf("%s  #%v %-24s %s/%s\n",
			occurrence["date"], occurrence["occurrenceIndex"], occurrence["name"],
			occurrence["category"], occurrence["subCategory"])
	}
	fmt.Printf("Total: %v occurrence(s)\n", result["total"])
}
