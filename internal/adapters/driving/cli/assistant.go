package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/folio/internal/adapters/driving/ndjson"
	"github.com/custodia-labs/folio/internal/adapters/driving/tui"
	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

var (
	createName         string
	createFile         string
	createTemperature  float64
	createTopK         int
	createChunkSize    int
	createChunkOverlap int
	createNDJSON       bool
	listJSON           bool
)

var assistantCmd = &cobra.Command{
	Use:     "assistant",
	Aliases: []string{"assistants"},
	Short:   "Manage document assistants",
}

var assistantCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an assistant from a PDF",
	Long: `Creates an assistant from a PDF. The document is split into chunks,
embedded and uploaded to durable storage.

Progress is shown as a progress bar on a terminal and as NDJSON lines
(one JSON object per line) otherwise, or when --ndjson is given.`,
	Args: cobra.NoArgs,
	RunE: runAssistantCreate,
}

var assistantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your assistants",
	Args:  cobra.NoArgs,
	RunE:  runAssistantList,
}

var assistantDeleteCmd = &cobra.Command{
	Use:   "delete [assistant-id]",
	Short: "Delete an assistant and its knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssistantDelete,
}

func init() {
	flags := assistantCreateCmd.Flags()
	flags.StringVar(&createName, "name", "", "assistant name (required)")
	flags.StringVarP(&createFile, "file", "f", "", "path to the PDF (required)")
	flags.Float64Var(&createTemperature, "temperature", domain.DefaultTemperature, "model temperature (0-2)")
	flags.IntVar(&createTopK, "top-k", domain.DefaultTopK, "chunks retrieved per question")
	flags.IntVar(&createChunkSize, "chunk-size", domain.DefaultChunkSize, "chunk size in characters")
	flags.IntVar(&createChunkOverlap, "chunk-overlap", domain.DefaultChunkOverlap, "chunk overlap in characters")
	flags.BoolVar(&createNDJSON, "ndjson", false, "stream progress as NDJSON even on a terminal")
	_ = assistantCreateCmd.MarkFlagRequired("name")
	_ = assistantCreateCmd.MarkFlagRequired("file")

	assistantListCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")

	assistantCmd.AddCommand(assistantCreateCmd)
	assistantCmd.AddCommand(assistantListCmd)
	assistantCmd.AddCommand(assistantDeleteCmd)
	rootCmd.AddCommand(assistantCmd)
}

// createSpec builds the assistant settings from the create flags.
// Only flags the user changed override the defaults.
func createSpec(cmd *cobra.Command) domain.AssistantSpec {
	spec := domain.AssistantSpec{
		Name:     createName,
		FileName: filepath.Base(createFile),
	}
	flags := cmd.Flags()
	if flags.Changed("temperature") {
		t := createTemperature
		spec.Temperature = &t
	}
	if flags.Changed("top-k") {
		spec.TopK = createTopK
	}
	if flags.Changed("chunk-size") {
		spec.ChunkSize = createChunkSize
	}
	if flags.Changed("chunk-overlap") {
		o := createChunkOverlap
		spec.ChunkOverlap = &o
	}
	return spec
}

func runAssistantCreate(cmd *cobra.Command, _ []string) error {
	if err := requireService("assistant service", assistantService); err != nil {
		return err
	}
	caller, err := resolveCaller()
	if err != nil {
		return err
	}

	f, err := os.Open(createFile)
	if err != nil {
		return fmt.Errorf("open PDF: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events, err := assistantService.Create(ctx, caller, driving.CreateAssistantRequest{
		Spec: createSpec(cmd),
		File: f,
	})
	if err != nil {
		return fmt.Errorf("create assistant: %w", err)
	}

	var final domain.ProgressEvent
	if isTerminal() && !createNDJSON {
		final, err = tui.RunIngest(createName, events, cancel, cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		final, err = ndjson.Stream(cmd.OutOrStdout(), events, cancel)
	}
	if err != nil {
		return err
	}
	if final.Status == domain.StatusError {
		return errors.New(final.Message)
	}
	return nil
}

func runAssistantList(cmd *cobra.Command, _ []string) error {
	if err := requireService("assistant service", assistantService); err != nil {
		return err
	}
	caller, err := resolveCaller()
	if err != nil {
		return err
	}

	assistants, err := assistantService.List(cmd.Context(), caller)
	if err != nil {
		return fmt.Errorf("list assistants: %w", err)
	}

	if listJSON {
		data, err := json.MarshalIndent(assistants, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal assistants: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(assistants) == 0 {
		cmd.Println("No assistants yet. Create one with 'folio assistant create'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tFILE\tQUERIES\tCREATED")
	for i := range assistants {
		a := &assistants[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", a.ID, a.Name, a.FileName, a.QueryCount, a.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runAssistantDelete(cmd *cobra.Command, args []string) error {
	if err := requireService("assistant service", assistantService); err != nil {
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

	if err := assistantService.Delete(cmd.Context(), caller, id); err != nil {
		return fmt.Errorf("delete assistant %d: %w", id, err)
	}
	cmd.Printf("Deleted assistant %d\n", id)
	return nil
}

// parseAssistantID parses a positive assistant id argument.
func parseAssistantID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid assistant id %q", arg)
	}
	return id, nil
}
