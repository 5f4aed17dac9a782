// Package main provides the Patina CLI, a small tool for working with
// .ptna target bundles.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/patina-ml/patina/internal/serialization"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "version":
		fmt.Printf("Patina %s\n", version)
	case "inspect":
		runOn(inspect, "inspect")
	case "verify":
		runOn(verify, "verify")
	default:
		fmt.Fprintf(os.Stderr, "ptna: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Patina - Style Transfer Losses for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version           Show version")
	fmt.Println("  inspect <file>    List the entries of a .ptna target bundle")
	fmt.Println("  verify <file>     Decode a bundle and verify its checksum")
}

func runOn(cmd func(string) error, name string) {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "usage: ptna %s <file.ptna>\n", name)
		os.Exit(2)
	}
	if err := cmd(os.Args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "ptna: %v\n", err)
		os.Exit(1)
	}
}

// inspect prints the bundle's header metadata and entry table without
// decoding payloads, so it stays fast on large bundles.
func inspect(path string) error {
	header, dataSize, err := serialization.InspectFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("file:     %s\n", path)
	fmt.Printf("format:   ptna v%d\n", header.Version)
	if header.Created != "" {
		fmt.Printf("created:  %s\n", header.Created)
	}
	if header.Producer != "" {
		fmt.Printf("producer: %s\n", header.Producer)
	}
	fmt.Printf("entries:  %d (%d data bytes)\n\n", len(header.Entries), dataSize)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tDTYPE\tSHAPE\tBYTES")
	for _, e := range header.Entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", e.Name, e.Kind, e.DType, shapeString(e.Shape), e.Size)
	}
	return w.Flush()
}

// verify fully decodes the bundle, which checks the entry table and the
// data checksum.
func verify(path string) error {
	bundle, err := serialization.ReadFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("%s: OK (%d entries, checksum verified)\n", path, bundle.Len())
	return nil
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = strconv.Itoa(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
