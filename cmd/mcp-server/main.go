package main

import (
	"context"
	"log"
	"os"

	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	opts := &constructcycle.ClientOptions{
		BaseURL: os.Getenv("CONSTRUCTCYCLE_BASE_URL"),
		// stdout carries the protocol, so logs go to stderr
		Logger: constructcycle.NewConsoleLogger(os.Stderr, os.Getenv("CONSTRUCTCYCLE_LOG_LEVEL")),
	}

	// A token wins over a saved session; with neither only public tools work
	if token := os.Getenv("CONSTRUCTCYCLE_TOKEN"); token != "" {
		opts.Token = token
		opts.Storage = constructcycle.NewMemoryStorage()
	} else if path := os.Getenv("CONSTRUCTCYCLE_SESSION_FILE"); path != "" {
		opts.SessionFile = path
	}

	client, err := constructcycle.NewClient(opts)
	if err != nil {
		log.Fatalf("failed to initialize ConstructCycle client: %v", err)
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "constructcycle",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	registerTools(server, client)

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func registerTools(server *mcp.Server, client *constructcycle.Client) {
	tools := &marketplaceTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List active construction material listings with optional filters for city, category, condition, price range and search text. Returns one page of results with the total count.",
	}, tools.ListProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get a single listing with its description, stock, price, location, seller company and images.",
	}, tools.GetProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_categories",
		Description: "Get all product categories.",
	}, tools.ListCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "my_orders",
		Description: "Get the signed-in buyer's orders with status and totals. Requires a session.",
	}, tools.MyOrders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "unread_count",
		Description: "Get the number of unread marketplace messages. Requires a session.",
	}, tools.UnreadCount)
}
