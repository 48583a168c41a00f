package lineparser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/danghamo/peoplerecords/internal/domain/person"
)

// Creator stores a parsed person. person.Repository satisfies it.
type Creator interface {
	Create(ctx context.Context, p person.Person) (person.Person, error)
}

// Import parses and creates each line in order. It stops at the first line
// that fails to parse or store; people created from earlier lines stay
// stored. The returned slice holds everything created before the failure.
func Import(ctx context.Context, lines []string, creator Creator) ([]person.Person, error) {
	created := make([]person.Person, 0, len(lines))
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		p, err := ParseLine(line)
		if err != nil {
			return created, fmt.Errorf("line %d: %w", i+1, err)
		}

		stored, err := creator.Create(ctx, p)
		if err != nil {
			return created, fmt.Errorf("line %d: %w", i+1, err)
		}
		created = append(created, stored)
	}
	return created, nil
}

// ImportReader reads r line by line and imports every non-blank line
func ImportReader(ctx context.Context, r io.Reader, creator Creator) ([]person.Person, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}
	return Import(ctx, lines, creator)
}

// ReadLines splits r into lines, dropping blank ones
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return lines, nil
}
