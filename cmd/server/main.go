package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/fx-transfer-ledger-system/internal/interfaces"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/models/events"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/rates"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/storage/memory"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/storage/postgres"
	"github.com/sheikh-saqib/fx-transfer-ledger-system/internal/transfer"
	"github.com/shopspring/decimal"
)

const transferCompletedTopic = "transfer_completed"

// defaultFeeRate is the fraction of every transfer amount charged to
// the source account: 1%.
var defaultFeeRate = decimal.NewFromFloat(0.01)

func main() {
	// .env is optional; real deployments set the environment directly.
	godotenv.Load()

	accountStore, rateStore := openStores()

	rateService := rates.NewService(rateStore)
	engine := transfer.NewEngine(accountStore, rateService, defaultFeeRate)

	var publisher interfaces.EventPublisher
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		publisher = kafka.NewPublisher([]string{brokers}, transferCompletedTopic)
	}

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	http.HandleFunc("/transfers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req struct {
			FromAccount string          `json:"from_account"`
			ToAccount   string          `json:"to_account"`
			Amount      decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount.Cmp(decimal.Zero) <= 0 {
			http.Error(w, "amount must be positive", http.StatusBadRequest)
			return
		}

		tx := models.Transfer{
			ID:          uuid.New().String(),
			FromAccount: req.FromAccount,
			ToAccount:   req.ToAccount,
			Amount:      req.Amount,
			CreatedAt:   time.Now(),
		}

		result, err := engine.Transfer(r.Context(), tx.FromAccount, tx.ToAccount, tx.Amount)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		// Best effort: the transfer is already durable, a lost event
		// must not fail the request.
		if publisher != nil {
			event := events.TransferCompleted{
				TransferID:     tx.ID,
				FromAccount:    tx.FromAccount,
				ToAccount:      tx.ToAccount,
				Amount:         tx.Amount,
				TotalDebit:     result.TotalDebit,
				CreditedAmount: result.CreditedAmount,
				FromCurrency:   result.FromCurrency,
				ToCurrency:     result.ToCurrency,
				OccurredAt:     tx.CreatedAt,
			}
			if err := publisher.Publish(transferCompletedTopic, event); err != nil {
				log.Printf("failed to publish transfer event %s: %v", tx.ID, err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			TransferID     string          `json:"transfer_id"`
			TotalDebit     decimal.Decimal `json:"total_debit"`
			CreditedAmount decimal.Decimal `json:"credited_amount"`
		}{tx.ID, result.TotalDebit, result.CreditedAmount})
	})

	http.HandleFunc("/accounts/balance", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		accountId := r.URL.Query().Get("account_id")
		if accountId == "" {
			http.Error(w, "account_id is a mandatory field", http.StatusBadRequest)
			return
		}

		account, err := accountStore.GetAccount(r.Context(), accountId)
		if err != nil {
			if errors.Is(err, interfaces.ErrNoAccount) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			AccountID string          `json:"account_id"`
			Currency  string          `json:"currency"`
			Balance   decimal.Decimal `json:"balance"`
		}{account.ID, account.Currency, account.Balance})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("Starting server on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

// openStores connects to postgres when DATABASE_URL is set, and falls
// back to seeded in-memory stores otherwise so the server can run
// standalone.
func openStores() (interfaces.AccountStore, interfaces.RateStore) {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		store, err := postgres.Open(context.Background(), url)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		return store, store
	}

	accounts := memory.NewAccountStore(
		models.Account{ID: "1", Owner: "Alice", Currency: "USD", Balance: decimal.RequireFromString("1000.00")},
		models.Account{ID: "2", Owner: "Bob", Currency: "AUD", Balance: decimal.RequireFromString("500.00")},
	)
	fxRates := memory.NewRateStore(
		models.ConversionRate{FromCurrency: "USD", ToCurrency: "AUD", Rate: decimal.NewFromInt(2)},
		models.ConversionRate{FromCurrency: "AUD", ToCurrency: "USD", Rate: decimal.RequireFromString("0.5")},
	)
	return accounts, fxRates
}

// statusFor maps the engine's client-input error kinds to HTTP status
// codes; anything else is an internal fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, transfer.ErrSameAccount),
		errors.Is(err, transfer.ErrInsufficientFunds),
		errors.Is(err, transfer.ErrUnsupportedConversion):
		return http.StatusBadRequest
	case errors.Is(err, transfer.ErrAccountNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
