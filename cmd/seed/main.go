package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"adpilot/internal/config"
	"adpilot/internal/database"
	"adpilot/internal/domain/account"
	"adpilot/internal/domain/alert"
	"adpilot/internal/domain/auth"
	"adpilot/internal/domain/billing"
	"adpilot/internal/domain/bulkupload"
	"adpilot/internal/domain/campaign"
)

// Seeds a demo user with a placeholder ad account and a few sample
// campaigns so the dashboard is not empty on first login.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&auth.User{},
		&auth.BackupCode{},
		&account.AdAccount{},
		&campaign.Campaign{},
		&campaign.AdSet{},
		&campaign.Ad{},
		&bulkupload.UploadBatch{},
		&bulkupload.BatchRow{},
		&alert.AlertRule{},
		&alert.AlertNotification{},
		&alert.AlertSettings{},
		&billing.Plan{},
		&billing.Subscription{},
	); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	ctx := context.Background()
	if err := billing.NewRepository(db).SeedPlans(ctx, billing.DefaultPlans()); err != nil {
		log.Fatal("plan seeding failed: ", err)
	}

	var existing auth.User
	if err := db.Where("email = ?", "demo@adpilot.jp").First(&existing).Error; err == nil {
		log.Println("Demo user already exists, nothing to do")
		return
	}

	log.Println("Creating demo user...")
	hash, _ := bcrypt.GenerateFromPassword([]byte("demo1234"), bcrypt.DefaultCost)
	user := auth.User{
		Email:        "demo@adpilot.jp",
		PasswordHash: string(hash),
		Name:         "デモユーザー",
		Company:      "AdPilot Demo",
		Language:     "ja",
		Timezone:     "Asia/Tokyo",
		IsDemo:       true,
	}
	db.Create(&user)
	log.Println("Demo user created: demo@adpilot.jp / demo1234")

	acct := account.AdAccount{
		UserID:      user.ID,
		AccountID:   "demo_act_001",
		AccountName: "デモ広告アカウント",
		AccessToken: "demo_token",
		IsActive:    true,
	}
	db.Create(&acct)

	log.Println("Creating sample campaigns...")
	names := []string{"夏セールキャンペーン", "新商品リード獲得", "ブランド認知度向上"}
	objectives := []string{"OUTCOME_SALES", "OUTCOME_LEADS", "OUTCOME_AWARENESS"}
	statuses := []campaign.Status{campaign.StatusActive, campaign.StatusActive, campaign.StatusPaused}

	for i := range names {
		start := time.Now().AddDate(0, 0, -7*i)
		c := campaign.Campaign{
			UserID:      user.ID,
			AdAccountID: acct.ID,
			RemoteID:    fmt.Sprintf("camp_demo%06d", i+1),
			Name:        names[i],
			Objective:   objectives[i],
			Status:      statuses[i],
			BudgetType:  campaign.BudgetDaily,
			Budget:      5000 * float64(i+1),
			StartDate:   start,
			AdSets: []campaign.AdSet{{
				Name:             names[i] + "_AdSet",
				Status:           statuses[i],
				BidStrategy:      "LOWEST_COST_WITHOUT_CAP",
				BidAmount:        1500,
				OptimizationGoal: "LINK_CLICKS",
				PlacementType:    "AUTOMATIC",
				Targeting: campaign.Targeting{
					GeoLocations: campaign.GeoLocations{Countries: []string{"JP"}},
					AgeMin:       20,
					AgeMax:       45,
					Genders:      []int{1, 2},
				},
				StartTime: &start,
				Ads: []campaign.Ad{{
					Name:        names[i] + "_Ad",
					Status:      statuses[i],
					Headline:    "今すぐチェック",
					Description: "期間限定のお得なオファー",
					LinkURL:     "https://example.jp/lp",
					CTAType:     "LEARN_MORE",
					ImageURL:    "https://example.jp/assets/ad.png",
				}},
			}},
		}
		db.Create(&c)
	}

	settings := alert.AlertSettings{
		UserID:     user.ID,
		Enabled:    true,
		MaxPerHour: 10,
		MaxPerDay:  50,
	}
	db.Create(&settings)

	log.Println("Seed complete")
}
