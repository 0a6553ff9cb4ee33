package batch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"decodedTx/internal/model"
)

// ParseRequests reads one JSON TxRequest per line. Blank lines are skipped.
func ParseRequests(r io.Reader) ([]model.TxRequest, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var requests []model.TxRequest
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req model.TxRequest
		if err := json.Unmarshal(line, &req); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		req.Network = strings.TrimSpace(req.Network)
		req.TxHash = strings.TrimSpace(req.TxHash)
		if req.Network == "" || req.TxHash == "" {
			return nil, fmt.Errorf("line %d: network and tx_hash are required", lineNo)
		}
		requests = append(requests, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan input: %w", err)
	}
	return requests, nil
}
