package command

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/vitals/internal/cli/connection"
	"github.com/yndnr/vitals/internal/cli/output"
)

type itemView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Value     string    `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at" table:"wide"`
}

type itemList struct {
	Items []itemView `json:"items"`
	Total int        `json:"total"`
}

type itemBody struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

var errMissingID = errors.New("item ID is required")

// DataCommand returns the data subcommand group.
func DataCommand() *cli.Command {
	itemFlags := func(required bool) []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Item name",
				Required: required,
			},
			&cli.StringFlag{
				Name:  "value",
				Usage: "Item value",
			},
		}
	}

	return &cli.Command{
		Name:  "data",
		Usage: "Manage items through the demo data API",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List items",
				Action:  dataList,
			},
			{
				Name:      "get",
				Usage:     "Show an item",
				ArgsUsage: "<id>",
				Action:    dataGet,
			},
			{
				Name:   "create",
				Usage:  "Create an item",
				Flags:  itemFlags(true),
				Action: dataCreate,
			},
			{
				Name:      "update",
				Usage:     "Replace an item's name and value",
				ArgsUsage: "<id>",
				Flags:     itemFlags(true),
				Action:    dataUpdate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete an item",
				ArgsUsage: "<id>",
				Action:    dataDelete,
			},
		},
	}
}

func itemPath(id string) string {
	return "/data/" + url.PathEscape(id)
}

func dataList(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, "/data")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var result itemList
	if _, err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	if len(result.Items) == 0 && s.flags.Output == output.FormatTable {
		s.printf("No items found.\n")
		return nil
	}
	if err := s.render(result.Items, nil); err != nil {
		return err
	}
	s.printf("\nTotal: %d\n", result.Total)
	return nil
}

func dataGet(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Get(ctx, itemPath(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var item itemView
	if _, err := connection.ParseResponse(resp, &item); err != nil {
		return err
	}
	return s.render(item, nil)
}

func dataCreate(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Post(ctx, "/data", itemBody{Name: c.String("name"), Value: c.String("value")})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var item itemView
	if _, err := connection.ParseResponse(resp, &item); err != nil {
		return err
	}
	s.printf("Item created: %s\n\n", item.ID)
	return s.render(item, nil)
}

func dataUpdate(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Put(ctx, itemPath(id), itemBody{Name: c.String("name"), Value: c.String("value")})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var item itemView
	if _, err := connection.ParseResponse(resp, &item); err != nil {
		return err
	}
	s.printf("Item updated: %s\n\n", item.ID)
	return s.render(item, nil)
}

func dataDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errMissingID
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	ctx, cancel := s.requestContext()
	defer cancel()

	resp, err := s.client.Delete(ctx, itemPath(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if _, err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}
	s.printf("Item deleted: %s\n", id)
	return nil
}
