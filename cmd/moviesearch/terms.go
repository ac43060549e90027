package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents [term]",
	Short: "List the IDs of documents containing a term",
	Args:  cobra.ExactArgs(1),
	RunE:  documentsCmdRun,
}

var tfCmd = &cobra.Command{
	Use:   "tf [doc-id] [term]",
	Short: "Print the frequency of a term in a document",
	Args:  cobra.ExactArgs(2),
	RunE:  tfCmdRun,
}

var idfCmd = &cobra.Command{
	Use:   "idf [term]",
	Short: "Print the inverse document frequency of a term",
	Args:  cobra.ExactArgs(1),
	RunE:  idfCmdRun,
}

var tfidfCmd = &cobra.Command{
	Use:   "tfidf [doc-id] [term]",
	Short: "Print the TF-IDF score of a term in a document",
	Args:  cobra.ExactArgs(2),
	RunE:  tfidfCmdRun,
}

var bm25idfCmd = &cobra.Command{
	Use:   "bm25idf [term]",
	Short: "Print the BM25 inverse document frequency of a term",
	Args:  cobra.ExactArgs(1),
	RunE:  bm25idfCmdRun,
}

var bm25tfCmd = &cobra.Command{
	Use:   "bm25tf [doc-id] [term]",
	Short: "Print the BM25 term-frequency component of a term in a document",
	Args:  cobra.ExactArgs(2),
	RunE:  bm25tfCmdRun,
}

type bm25tfFlags struct {
	k1 float64
	b  float64
}

var bm25tfArgs bm25tfFlags

func init() {
	bm25tfCmd.Flags().Float64Var(&bm25tfArgs.k1, "k1", 0,
		"BM25 term-frequency saturation. Unset uses the configured default.")
	bm25tfCmd.Flags().Float64Var(&bm25tfArgs.b, "b", 0,
		"BM25 length normalization in [0,1]. Unset uses the configured default.")

	rootCmd.AddCommand(documentsCmd, tfCmd, idfCmd, tfidfCmd, bm25idfCmd, bm25tfCmd)
}

func parseDocID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("document id must be an integer, got %q", arg)
	}
	return id, nil
}

func documentsCmdRun(cmd *cobra.Command, args []string) error {
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	ids, err := eng.DocumentsFor(args[0])
	if err != nil {
		return err
	}
	for _, id := range ids {
		doc, _ := eng.Current().Index().Document(id)
		rootCmd.Println(fmt.Sprintf("%d\t%s", id, doc.Title))
	}
	return nil
}

func tfCmdRun(cmd *cobra.Command, args []string) error {
	docID, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	tf, err := eng.TermFrequency(docID, args[1])
	if err != nil {
		return err
	}
	rootCmd.Println(fmt.Sprintf("Term frequency of '%s' in document '%d': %d", args[1], docID, tf))
	return nil
}

func idfCmdRun(cmd *cobra.Command, args []string) error {
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	idf, err := eng.IDF(args[0])
	if err != nil {
		return err
	}
	rootCmd.Println(fmt.Sprintf("Inverse document frequency of '%s': %.2f", args[0], idf))
	return nil
}

func tfidfCmdRun(cmd *cobra.Command, args []string) error {
	docID, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	score, err := eng.TFIDF(docID, args[1])
	if err != nil {
		return err
	}
	rootCmd.Println(fmt.Sprintf("TF-IDF score of '%s' in document '%d': %.2f", args[1], docID, score))
	return nil
}

func bm25idfCmdRun(cmd *cobra.Command, args []string) error {
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	score, err := eng.BM25IDF(args[0])
	if err != nil {
		return err
	}
	rootCmd.Println(fmt.Sprintf("BM25 IDF score of '%s': %.2f", args[0], score))
	return nil
}

func bm25tfCmdRun(cmd *cobra.Command, args []string) error {
	docID, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	eng, err := openSnapshot()
	if err != nil {
		return err
	}
	defer eng.Close()

	var k1, b *float64
	if cmd.Flags().Changed("k1") {
		k1 = &bm25tfArgs.k1
	}
	if cmd.Flags().Changed("b") {
		b = &bm25tfArgs.b
	}

	score, err := eng.BM25TF(docID, args[1], k1, b)
	if err != nil {
		return err
	}
	rootCmd.Println(fmt.Sprintf("BM25 TF score of '%s' in document '%d': %.2f", args[1], docID, score))
	return nil
}
