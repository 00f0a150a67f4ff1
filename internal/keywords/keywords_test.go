package keywords

import "testing"

func TestDirectionSets(t *testing.T) {
	tests := []struct {
		text       string
		received   bool
		spent      bool
		transfer   bool
		settlement bool
	}{
		{"Rs.1,200 spent at Starbucks on 05-01-2025 via UPI", false, true, false, false},
		{"INR 50,000 credited to A/c XX1234 by ACME PAYROLL", true, false, false, false},
		{"Refund of Rs.499 received from Amazon", true, false, false, false},
		{"Credit Card Payment of Rs.15000 made via NetBanking", false, false, false, true},
		{"Rs.5000 transferred to own account XX9876", false, false, true, false},
		{"Fund transfer of INR 2000 to Ravi", false, false, true, false},
		{"Payment towards your credit card ending 4321 received", true, false, false, true},
		{"Credit card statement", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsReceived(tt.text); got != tt.received {
				t.Errorf("IsReceived: got %v, want %v", got, tt.received)
			}
			if got := IsSpent(tt.text); got != tt.spent {
				t.Errorf("IsSpent: got %v, want %v", got, tt.spent)
			}
			if got := IsTransfer(tt.text); got != tt.transfer {
				t.Errorf("IsTransfer: got %v, want %v", got, tt.transfer)
			}
			if got := IsSettlement(tt.text); got != tt.settlement {
				t.Errorf("IsSettlement: got %v, want %v", got, tt.settlement)
			}
		})
	}
}

func TestIsNoise(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"Your OTP is 482913, do not share", true},
		{"482913 is your verification code", true},
		{"Rs.2,500 will be debited on 10-01-2025 for your SIP", true},
		{"Your credit card bill of Rs.8000 is due on 15-01", true},
		{"You are eligible for a pre-approved loan. Apply now", true},
		{"Your e-statement for December is ready", true},
		{"Rs.1,200 spent at Starbucks on 05-01-2025 via UPI", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsNoise(tt.text); got != tt.expected {
				t.Errorf("IsNoise(%q): got %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestIsReceivedType(t *testing.T) {
	for _, in := range []string{"CR", "C", "CREDIT", "DEPOSIT", "INCOME"} {
		if !IsReceivedType(in) {
			t.Errorf("IsReceivedType(%q): got false, want true", in)
		}
	}
	for _, in := range []string{"DR", "D", "DEBIT", "", "cr"} {
		if IsReceivedType(in) {
			t.Errorf("IsReceivedType(%q): got true, want false", in)
		}
	}
}

func TestIncomeType(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"Salary Credit", "Salary"},
		{"NEFT ACME PAYROLL JAN", "Salary"},
		{"Savings interest paid", "Interest"},
		{"Dividend INFY", "Dividend"},
		{"Refund from Amazon", "Refund"},
		{"UPI from Ravi", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IncomeType(tt.text); got != tt.expected {
				t.Errorf("IncomeType(%q): got %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}

func TestStripBalance(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{"INR 500.00 debited from A/c XX1234 on 05-01-25. Avl Bal INR 10,000.00 Cr.", "INR 500.00 debited from A/c XX1234 on 05-01-25. "},
		{"Rs.200 spent at Cafe. Available Balance: Rs.9,800", "Rs.200 spent at Cafe. "},
		{"Rs 75 paid to Ravi, bal: Rs 1,020 CR", "Rs 75 paid to Ravi, "},
		{"Your balance is Rs.12,000 as of today", "Your "},
		{"Balance transfer of Rs.5,000 done", "Balance transfer of Rs.5,000 done"},
		{"Rs.1,200 spent at Starbucks", "Rs.1,200 spent at Starbucks"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := StripBalance(tt.text); got != tt.expected {
				t.Errorf("StripBalance(%q): got %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
