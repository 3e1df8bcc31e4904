// Command snakec-lsp is a minimal diagnostics-only language server for
// internal/surface's notation, wired the way the teacher's cmd/kanso-lsp
// wires tliron/glsp + tliron/commonlog.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"snakec/internal/devserver"
)

const lsName = "snakec"

func main() {
	commonlog.Configure(1, nil)

	h := devserver.NewHandler()
	handler := protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("starting snakec-lsp")
	if err := s.RunStdio(); err != nil {
		log.Println("snakec-lsp:", err)
		os.Exit(1)
	}
}
