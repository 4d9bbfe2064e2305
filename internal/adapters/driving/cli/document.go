package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shoebox-labs/shoebox-cli/internal/core/domain"
	"github.com/shoebox-labs/shoebox-cli/internal/logger"
	"github.com/shoebox-labs/shoebox-cli/internal/textclean"
)

var docCmd = &cobra.Command{
	Use:   "doc",
	Short: "Manage stored documents",
	Long:  `Add, list, inspect or remove documents in the shoebox.`,
}

var docAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Store a document",
	Long: `Stores a document with its text, classifies it and embeds it.
Text is read from --text or, when --text-file is given, from that file.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocAdd,
}

var docListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents",
	Args:  cobra.NoArgs,
	RunE:  runDocList,
}

var docShowCmd = &cobra.Command{
	Use:   "show [doc-id]",
	Short: "Show a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocShow,
}

var docRmCmd = &cobra.Command{
	Use:   "rm [doc-id]",
	Short: "Remove a document",
	Long:  `Removes a document together with its embedding, assets and index entry.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocRm,
}

var (
	docAddText     string
	docAddTextFile string
	docAddType     string
	docAddLocation string
)

func init() {
	docAddCmd.Flags().StringVar(&docAddText, "text", "", "document text")
	docAddCmd.Flags().StringVar(&docAddTextFile, "text-file", "", "read document text from a file")
	docAddCmd.Flags().StringVar(&docAddType, "type", "", "document type (receipt, letter, ...)")
	docAddCmd.Flags().StringVar(&docAddLocation, "location", "", "where the document was captured")

	docCmd.AddCommand(docAddCmd)
	docCmd.AddCommand(docListCmd)
	docCmd.AddCommand(docShowCmd)
	docCmd.AddCommand(docRmCmd)
	rootCmd.AddCommand(docCmd)
}

func runDocAdd(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	text := docAddText
	if docAddTextFile != "" {
		data, err := os.ReadFile(docAddTextFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		text = string(data)
	}

	docType, err := domain.ParseDocType(docAddType)
	if err != nil {
		return err
	}

	ctx := context.Background()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Title:       args[0],
		DocType:     docType,
		RawText:     text,
		CleanedText: textclean.Clean(text),
		Location:    docAddLocation,
		CreatedAt:   time.Now(),
	}

	// Embed on ingest when a strategy is available; without one the
	// document is still stored and picked up by a later migrate run.
	var emb *domain.Embedding
	if embedder != nil {
		vec, err := embedder.Embed(ctx, doc.EmbeddingText())
		if err != nil {
			logger.Warn("Embedding failed, storing without vector: %v", err)
		} else {
			emb = &domain.Embedding{
				DocumentID:   doc.ID,
				Vector:       vec,
				ModelVersion: embedder.ModelVersion(),
				Dimension:    len(vec),
			}
		}
	}

	if err := docStore.UpsertDocument(ctx, doc, emb); err != nil {
		return fmt.Errorf("store document: %w", err)
	}

	cmd.Printf("Stored %s (%s)\n", doc.ID, doc.DocType.Label())
	return nil
}

func runDocList(cmd *cobra.Command, _ []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	docs, err := docStore.ListDocuments(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents stored.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title: %s\n", docs[i].Title)
		cmd.Printf("    Type:  %s\n", docs[i].DocType.Label())
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocShow(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()
	doc, err := docStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Type:     %s\n", doc.DocType.Label())
	if doc.Location != "" {
		cmd.Printf("  Location: %s\n", doc.Location)
	}
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	if doc.CapturedAt != nil {
		cmd.Printf("  Captured: %s\n", doc.CapturedAt.Format("2006-01-02 15:04:05"))
	}
	if len(doc.Assets) > 0 {
		cmd.Printf("  Assets:   %d\n", len(doc.Assets))
		for i := range doc.Assets {
			cmd.Printf("    [%d] %s (%s)\n", doc.Assets[i].PageNumber, doc.Assets[i].FileURL, doc.Assets[i].AssetType)
		}
	}

	emb, err := docStore.GetEmbedding(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("failed to get embedding: %w", err)
	}
	if emb != nil {
		cmd.Printf("  Vector:   %d dimensions (%s)\n", emb.Dimension, emb.ModelVersion)
	} else {
		cmd.Println("  Vector:   none")
	}

	if doc.RawText != "" {
		cmd.Println()
		cmd.Println(doc.RawText)
	}
	return nil
}

func runDocRm(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	if err := docStore.DeleteDocument(context.Background(), args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed %s\n", args[0])
	return nil
}
