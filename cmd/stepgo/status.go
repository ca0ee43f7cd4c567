package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/stepgo/stepgo/internal/logic/motor"
)

var statusURL string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running stepgo server for its motor status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "http://localhost:8080", "base URL of the stepgo server")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(statusURL + "/api/status")
	if err != nil {
		return fmt.Errorf("query server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}

	var st motor.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}

	fmt.Printf("chip:    %s\n", st.Chip)
	fmt.Printf("step:    %d\n", st.Step)
	fmt.Printf("target:  %d\n", st.Target)
	fmt.Printf("moving:  %v\n", st.Moving)
	if st.Microsteps > 0 {
		fmt.Printf("mode:    1/%d\n", st.Microsteps)
	}
	if st.LastError != "" {
		fmt.Printf("error:   %s\n", st.LastError)
	}
	return nil
}
