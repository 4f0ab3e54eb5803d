package memstore

import (
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

// NewSample returns a store holding the demo users, products and orders tables.
func NewSample() *Store {
	s := New()

	s.AddTable(schema.TableInfo{Name: "users", Description: "Stores user information"},
		[]schema.ColumnInfo{
			{Name: "id", DataType: "INT", Description: "Unique identifier for the user"},
			{Name: "name", DataType: "VARCHAR", Description: "Name of the user"},
			{Name: "email", DataType: "VARCHAR", Description: "Email address of the user"},
			{Name: "signup_date", DataType: "DATE", Description: "Date the user signed up"},
		},
		[]query.Row{
			{"id": 1, "name": "Alice Smith", "email": "alice@example.com", "signup_date": "2023-01-15"},
			{"id": 2, "name": "Bob Johnson", "email": "bob@example.com", "signup_date": "2023-02-20"},
			{"id": 3, "name": "Charlie Brown", "email": "charlie@example.com", "signup_date": "2023-03-10"},
			{"id": 4, "name": "Diana Prince", "email": "diana@example.com", "signup_date": "2023-04-05"},
		})

	s.AddTable(schema.TableInfo{Name: "products", Description: "Stores product details"},
		[]schema.ColumnInfo{
			{Name: "product_id", DataType: "INT", Description: "Unique identifier for the product"},
			{Name: "product_name", DataType: "VARCHAR", Description: "Name of the product"},
			{Name: "price", DataType: "DECIMAL", Description: "Price of the product"},
			{Name: "stock_quantity", DataType: "INT", Description: "Available stock of the product"},
		},
		[]query.Row{
			{"product_id": 101, "product_name": "Laptop Pro", "price": 1200.00, "stock_quantity": 50},
			{"product_id": 102, "product_name": "Wireless Mouse", "price": 25.50, "stock_quantity": 200},
			{"product_id": 103, "product_name": "Mechanical Keyboard", "price": 75.00, "stock_quantity": 150},
			{"product_id": 104, "product_name": "4K Monitor", "price": 450.00, "stock_quantity": 75},
		})

	s.AddTable(schema.TableInfo{Name: "orders", Description: "Stores customer orders"},
		[]schema.ColumnInfo{
			{Name: "order_id", DataType: "INT", Description: "Unique identifier for the order"},
			{Name: "user_id", DataType: "INT", Description: "ID of the user who placed the order"},
			{Name: "product_id", DataType: "INT", Description: "ID of the product ordered"},
			{Name: "order_date", DataType: "DATE", Description: "Date the order was placed"},
			{Name: "quantity", DataType: "INT", Description: "Quantity of the product ordered"},
		},
		[]query.Row{
			{"order_id": 1001, "user_id": 1, "product_id": 101, "order_date": "2023-04-01", "quantity": 1},
			{"order_id": 1002, "user_id": 2, "product_id": 102, "order_date": "2023-04-02", "quantity": 2},
			{"order_id": 1003, "user_id": 1, "product_id": 103, "order_date": "2023-04-03", "quantity": 1},
			{"order_id": 1004, "user_id": 3, "product_id": 104, "order_date": "2023-04-05", "quantity": 1},
			{"order_id": 1005, "user_id": 4, "product_id": 101, "order_date": "2023-04-06", "quantity": 1},
		})

	return s
}
