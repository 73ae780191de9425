// Package main demonstrates how to use the waguard template check library.
//
// This example shows:
// 1. Loading configuration from YAML plus a .env file
// 2. Initializing the client with cloud safety checkers
// 3. Checking a template before submission to the messaging platform
// 4. Presenting the outcome to the editor UI
// 5. Handling async verdicts via poller and callbacks
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/joho/godotenv"

	waguard "github.com/sociovia/waguard"
	"github.com/sociovia/waguard/checkers"
	"github.com/sociovia/waguard/checkers/aliyun"
	"github.com/sociovia/waguard/checkers/huawei"
	"github.com/sociovia/waguard/checkers/rules"
	"github.com/sociovia/waguard/client"
	"github.com/sociovia/waguard/config"
	"github.com/sociovia/waguard/hooks"
	"github.com/sociovia/waguard/policy"
	sqlstore "github.com/sociovia/waguard/store/sql"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

func main() {
	ctx := context.Background()

	// ============================================================
	// Step 1: Load Configuration
	// ============================================================
	// .env carries the credentials referenced by ${...} in the YAML.
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using process environment")
	}

	cfg, err := config.Load("waguard.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// ============================================================
	// Step 2: Initialize Database Store
	// ============================================================
	db, err := sql.Open(cfg.Store.Dialect, cfg.Store.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := sqlstore.NewWithDB(db, sqlstore.Dialect(cfg.Store.Dialect))

	// ============================================================
	// Step 3: Initialize Checkers
	// ============================================================
	// The rules checker is free and local; it runs first.
	rulesChecker := rules.New()

	aliyunChecker, err := aliyun.New(aliyun.Config{
		CheckerConfig: checkers.CheckerConfig{
			AccessKeyID:     cfg.Checkers.Aliyun.AccessKeyID,
			AccessKeySecret: cfg.Checkers.Aliyun.AccessKeySecret,
			Region:          cfg.Checkers.Aliyun.Region,
			Endpoint:        cfg.Checkers.Aliyun.Endpoint,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create aliyun checker: %v", err)
	}

	huaweiChecker, err := huawei.New(huawei.Config{
		CheckerConfig: checkers.CheckerConfig{
			AccessKeyID:     cfg.Checkers.Huawei.AccessKeyID,
			AccessKeySecret: cfg.Checkers.Huawei.AccessKeySecret,
			Region:          cfg.Checkers.Huawei.Region,
		},
		ProjectID: cfg.Checkers.Huawei.ProjectID,
	})
	if err != nil {
		log.Fatalf("Failed to create huawei checker: %v", err)
	}

	// ============================================================
	// Step 4: Implement Business Hooks
	// ============================================================
	myHooks := hooks.FuncHooks{
		OnTemplateCheckedFunc: func(ctx context.Context, e hooks.TemplateCheckedEvent) error {
			log.Printf("[Hook] Template %s/%s checked: gate=%s safety=%s",
				e.Tpl.TemplateName, e.Tpl.Language, e.Outcome.Gate, e.Outcome.Safety)

			change := hooks.GateChange{From: e.PreviousGate, To: e.Outcome.Gate}
			if change.IsEscalation() {
				log.Printf("  -> Gate escalated, notify the template owner")
			}
			return nil
		},
		OnCategoryMismatchFunc: func(ctx context.Context, e hooks.CategoryMismatchEvent) error {
			log.Printf("[Hook] Category mismatch on %s: declared=%s detected=%s",
				e.Tpl.TemplateName, e.DeclaredCategory, e.Compliance.DetectedIntent)
			if e.Compliance.SuggestSwitch {
				log.Printf("  -> Suggest switching to %s", e.Compliance.SuggestedCategory)
			}
			return nil
		},
		OnContentFlaggedFunc: func(ctx context.Context, e hooks.ContentFlaggedEvent) error {
			log.Printf("[Hook] Content flagged on %s by %s", e.Tpl.TemplateName, e.Checker)
			for _, v := range e.Violations {
				log.Printf("  - %s (%s) at %s", v.Type, v.Severity, v.Location)
			}
			return nil
		},
		OnReviewRequiredFunc: func(ctx context.Context, e hooks.ReviewRequiredEvent) error {
			log.Printf("[Hook] Review required for %s, priority=%d expires=%s",
				e.Tpl.TemplateName, e.Priority, e.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}

	// ============================================================
	// Step 5: Create Client
	// ============================================================
	waguardClient, err := client.New(client.Options{
		Store: store,
		Hooks: myHooks,
		Checkers: []checkers.Checker{
			rulesChecker,
			checkers.WrapWithRetry(aliyunChecker, 3),
			checkers.WrapWithRetry(huaweiChecker, 3),
		},
		Pipeline: client.PipelineConfig{
			Primary:   cfg.Pipeline.Primary,
			Secondary: cfg.Pipeline.Secondary,
			Merge:     client.MergePolicy(cfg.Pipeline.Merge),
		},
		EnableDedup: cfg.EnableDedup,
		ComponentMerge: waguard.ComponentMergeStrategy{
			MaxLen:    cfg.ComponentMergeMaxLen,
			Separator: waguard.DefaultComponentMergeSeparator,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	// ============================================================
	// Example 1: Check a Utility Template
	// ============================================================
	log.Println("\n=== Example 1: Check Utility Template ===")

	orderResult, err := waguardClient.CheckTemplate(ctx, client.CheckInput{
		Template: waguard.Template{
			Name:     "order_shipped",
			Language: "en_US",
			Category: waguard.CategoryUtility,
			Body:     "Hi {{1}}, your order {{2}} has shipped and will arrive on {{3}}.",
			Footer:   "Reply STOP to opt out",
			Buttons: []waguard.Button{
				{Type: "URL", Text: "Track order", URL: "https://shop.example.com/track/{{2}}"},
			},
		},
		SubmitterID: "editor_42",
		TraceID:     "trace_001",
	})
	if err != nil {
		log.Printf("Failed to check template: %v", err)
	} else {
		log.Printf("Checked: gate=%s badge=%s deduped=%v",
			orderResult.Outcome.Gate, orderResult.Outcome.Compliance.Badge, orderResult.Deduped)
	}

	// ============================================================
	// Example 2: Present the Outcome to the Editor UI
	// ============================================================
	log.Println("\n=== Example 2: Present Outcome ===")

	if orderResult != nil {
		presenter := policy.NewPresenter()
		presented := presenter.Present(policy.PresentContext{
			Category: waguard.CategoryUtility,
			Role:     policy.RoleEditor,
		}, orderResult.Outcome)

		log.Printf("CanSubmit=%v Message=%q", presented.CanSubmit, presented.Message)
		for _, v := range presented.Violations {
			log.Printf("  - %s at %s blocking=%v: %s", v.Type, v.Location, v.Blocking, v.Detail)
		}
	}

	// ============================================================
	// Example 3: Catch a Miscategorized Template
	// ============================================================
	log.Println("\n=== Example 3: Marketing Copy Under Utility ===")

	saleResult, err := waguardClient.CheckTemplate(ctx, client.CheckInput{
		Template: waguard.Template{
			Name:     "weekend_push",
			Language: "en_US",
			Category: waguard.CategoryUtility,
			Body:     "Flash sale! Up to 50% off everything this weekend. Buy now before it's gone!",
		},
		SubmitterID: "editor_42",
	})
	if err != nil {
		log.Printf("Failed to check template: %v", err)
	} else {
		log.Printf("Gate=%s compliant=%v suggested=%s",
			saleResult.Outcome.Gate,
			saleResult.Outcome.Compliance.IsCompliant,
			saleResult.Outcome.Compliance.SuggestedCategory)
	}

	// ============================================================
	// Example 4: Start the Async Poller
	// ============================================================
	log.Println("\n=== Example 4: Async Poller ===")

	if cfg.Poller.Enabled {
		poller := client.NewPoller(waguardClient, client.PollerConfig{
			PollInterval: cfg.Poller.PollInterval,
			BatchSize:    cfg.Poller.BatchSize,
			Workers:      cfg.Poller.Workers,
		})
		poller.Start(ctx)
		defer poller.Stop()
	}

	// ============================================================
	// Example 5: Handle Checker Callback (for async verdicts)
	// ============================================================
	log.Println("\n=== Example 5: Handle Callback ===")

	// In your HTTP handler:
	// func handleHuaweiCallback(w http.ResponseWriter, r *http.Request) {
	//     body, _ := io.ReadAll(r.Body)
	//     headers := make(map[string]string)
	//     for k, v := range r.Header {
	//         headers[k] = v[0]
	//     }
	//     if err := waguardClient.HandleCallback(r.Context(), "huawei", headers, body); err != nil {
	//         http.Error(w, err.Error(), http.StatusBadRequest)
	//         return
	//     }
	//     w.WriteHeader(http.StatusOK)
	// }

	log.Println("Callback handler example shown above")

	// ============================================================
	// Example 6: Bulk Re-check After a Policy Update
	// ============================================================
	log.Println("\n=== Example 6: Bulk Re-check ===")

	recheckResult, err := waguardClient.Recheck(ctx, client.RecheckInput{
		Templates: []waguard.Template{
			{Name: "order_shipped", Language: "en_US", Category: waguard.CategoryUtility,
				Body: "Hi {{1}}, your order {{2}} has shipped and will arrive on {{3}}."},
			{Name: "weekend_push", Language: "en_US", Category: waguard.CategoryUtility,
				Body: "Flash sale! Up to 50% off everything this weekend. Buy now before it's gone!"},
		},
		SubmitterID: "system",
		OnlyGated:   true,
		Concurrency: 4,
	})
	if err != nil {
		log.Printf("Failed to re-check: %v", err)
	} else {
		log.Printf("Re-check: changed=%d skipped=%d failed=%d",
			recheckResult.Changed, recheckResult.Skipped, recheckResult.Failed)
	}

	// ============================================================
	// Example 7: Apply a Human Review Verdict
	// ============================================================
	log.Println("\n=== Example 7: Human Review Verdict ===")

	err = waguardClient.ApplyReviewVerdict(ctx, "weekend_push", "en_US",
		waguard.GateAllow, "reviewer_7", "Reviewed: acceptable as utility with the discount line removed")
	if err != nil {
		log.Printf("Failed to apply verdict: %v", err)
	} else {
		history, _ := waguardClient.GetBindingHistory(ctx, "weekend_push", "en_US", 10)
		log.Printf("Binding history entries: %d", len(history))
		for _, h := range history {
			log.Printf("  Revision %d: gate=%s source=%s", h.CheckRevision, h.Gate, h.Source)
		}
	}

	log.Println("\n=== Demo Complete ===")
}
