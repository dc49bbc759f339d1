package ledger

// SeedCustomers returns the demo book: one business customer with a checking
// account carrying October activity and a funded savings account.
func SeedCustomers() []Customer {
	return []Customer{
		{
			ID:    "cust_123",
			Name:  "Acme Corp",
			Email: "contact@acme.com",
			Accounts: []Account{
				{
					ID:       "acc_checking_1",
					Type:     AccountChecking,
					Balance:  50000.00,
					Currency: "USD",
					Transactions: []Transaction{
						{
							ID:          "tx_1",
							Date:        "2023-10-01",
							Amount:      -1500.00,
							Description: "Office Supplies",
							Merchant:    "Staples",
							Category:    "expenses",
						},
						{
							ID:          "tx_2",
							Date:        "2023-10-05",
							Amount:      12000.00,
							Description: "Client Payment - Project X",
							Merchant:    "Client A",
							Category:    "income",
						},
						{
							ID:          "tx_3",
							Date:        "2023-10-10",
							Amount:      -500.00,
							Description: "Lunch Meeting",
							Merchant:    "Bistro 55",
							Category:    "meals",
						},
						{
							ID:          "tx_4",
							Date:        "2023-10-12",
							Amount:      -200.00,
							Description: "Subscription",
							Merchant:    "SaaS Tool",
							Category:    "software",
						},
					},
				},
				{
					ID:       "acc_savings_1",
					Type:     AccountSavings,
					Balance:  120000.00,
					Currency: "USD",
				},
			},
		},
	}
}
