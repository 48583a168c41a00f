// Package console runs the interactive records client: it imports three
// record files, then prints the records in the order the user picks.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/danghamo/peoplerecords/internal/domain/person"
	"github.com/danghamo/peoplerecords/internal/domain/shared"
	"github.com/danghamo/peoplerecords/pkg/logger"
)

// RequiredFiles is the number of record files the console imports
const RequiredFiles = 3

// Console messages
const (
	Prompt       = "Select an ordering method, or quit: name, birthdate, gender, quit"
	EmptyMessage = "List was Empty"
	InvalidEntry = "Invalid entry."
	QuitKeyword  = "quit"
)

// Records is the part of the records service the console uses
type Records interface {
	ImportReader(ctx context.Context, r io.Reader) ([]person.Person, error)
	ListOrdered(ctx context.Context, order person.Order) ([]person.Person, error)
	Count(ctx context.Context) (int, error)
}

// Console reads order keywords from in and writes records to out
type Console struct {
	records Records
	in      io.Reader
	out     io.Writer
	logger  *logger.Logger
}

// New creates a console over the given streams
func New(records Records, in io.Reader, out io.Writer, log *logger.Logger) *Console {
	return &Console{
		records: records,
		in:      in,
		out:     out,
		logger:  log.WithComponent("console"),
	}
}

// ValidatePaths checks that exactly three paths were given and that each
// names an existing regular file
func ValidatePaths(paths []string) error {
	if len(paths) != RequiredFiles {
		return shared.ErrInvalidArgumentf("expected %d record files, got %d", RequiredFiles, len(paths))
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return shared.ErrInvalidArgumentf("record file %s does not exist", path)
		}
		if info.IsDir() {
			return shared.ErrInvalidArgumentf("record file %s is a directory", path)
		}
	}
	return nil
}

// LoadFiles imports every line of every file in order. The first malformed
// line aborts the load.
func (c *Console) LoadFiles(ctx context.Context, paths []string) error {
	for _, path := range paths {
		if err := c.loadFile(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) loadFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	created, err := c.records.ImportReader(ctx, f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	c.logger.Debug("Imported record file",
		zap.String("path", path),
		zap.Int("records", len(created)))
	return nil
}

// Run prompts until the user types quit or input ends
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(c.out, Prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}

		keyword := strings.TrimSpace(scanner.Text())
		if keyword == QuitKeyword {
			return nil
		}

		if err := c.printOrdered(ctx, keyword); err != nil {
			return err
		}
	}
}

// printOrdered handles one keyword. Only store failures are returned.
func (c *Console) printOrdered(ctx context.Context, keyword string) error {
	order, err := person.ParseOrder(keyword)
	if err != nil {
		fmt.Fprintln(c.out, InvalidEntry)
		return nil
	}

	count, err := c.records.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Fprintln(c.out, EmptyMessage)
		return nil
	}

	people, err := c.records.ListOrdered(ctx, order)
	if err != nil {
		return err
	}
	for _, p := range people {
		fmt.Fprintln(c.out, p.String())
	}
	return nil
}
