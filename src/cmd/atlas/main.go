// Command atlas prints the service schema as postgres DDL for
// `atlas migrate diff --env gorm`.
package main

import (
	"fmt"
	"io"
	"os"

	"lodging/src/models"

	"ariga.io/atlas-provider-gorm/gormschema"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(models.All()...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
