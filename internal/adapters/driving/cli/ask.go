package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [assistant-id] [question]",
	Short: "Ask an assistant a question",
	Long: `Answers a question from the assistant's document and lists the pages
the answer drew on.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [assistant-id]",
	Short: "Chat with an assistant interactively",
	Args:  cobra.ExactArgs(1),
	RunE:  runChat,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := requireService("responder", responder); err != nil {
		return err
	}
	id, err := parseAssistantID(args[0])
	if err != nil {
		return err
	}
	caller, err := resolveCaller()
	if err != nil {
		return err
	}

	question := strings.Join(args[1:], " ")
	answer, err := responder.Answer(cmd.Context(), caller, id, question)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Response)
	cmd.Println()
	cmd.Printf("Sources: %s\n", tui.FormatSources(answer.Sources))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := requireService("responder", responder); err != nil {
		return err
	}
	if err := requireService("assistant service", assistantService); err != nil {
		return err
	}
	if !isTerminal() {
		return errors.New("chat needs an interactive terminal; use 'folio ask' instead")
	}
	id, err := parseAssistantID(args[0])
	if err != nil {
		return err
	}
	caller, err := resolveCaller()
	if err != nil {
		return err
	}

	ports := &tui.Ports{Responder: responder, Assistants: assistantService, Caller: caller}
	return tui.RunChat(cmd.Context(), ports, id, cmd.InOrStdin(), cmd.OutOrStdout())
}
