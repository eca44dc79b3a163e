package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Outreach/internal/domain"
)

// readGraph читает документ {nodes, edges} из файла или stdin ("-").
//
// Структура не валидируется: save должен уметь отправить
// даже граф, который backend потом отклонит.
func readGraph(cmd *cobra.Command, path string) (domain.Graph, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return domain.Graph{}, fmt.Errorf("open graph: %w", err)
		}
		defer f.Close()
		r = f
	}

	var g domain.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return domain.Graph{}, fmt.Errorf("decode graph %s: %w", path, err)
	}
	return g, nil
}
