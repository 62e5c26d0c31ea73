package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hackgods/clinic-management/internal/auth"
	"github.com/hackgods/clinic-management/internal/clinic"
	"github.com/hackgods/clinic-management/internal/config"
	"github.com/hackgods/clinic-management/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	patients := flag.Int("patients", 200, "number of fake patients")
	doctors := flag.Int("doctors", 20, "number of fake doctors")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.Database.ConnString())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	// 0 seeds from crypto/rand
	_ = gofakeit.Seed(0)

	if err := seedAdmin(context.Background(), pool, cfg.PasswordMode); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if err := seedDoctors(context.Background(), pool, *doctors); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedPatients(context.Background(), pool, *patients); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// inTx runs fn with a Source bound to one transaction. Records go through
// clinic.Service so seeded data passes the same validation as the API.
func inTx(ctx context.Context, pool *pgxpool.Pool, fn func(src db.Source) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(db.Fixed{Q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// seedAdmin creates admin/admin123 unless a user named admin exists.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, mode config.PasswordMode) error {
	return inTx(ctx, pool, func(src db.Source) error {
		users := clinic.NewPgUserRepository(src)

		_, err := users.GetByUsername(ctx, "admin")
		if err == nil {
			log.Println("admin user already present")
			return nil
		}
		if !errors.Is(err, clinic.ErrNotFound) {
			return err
		}

		password := "admin123"
		if mode == config.PasswordBcrypt {
			if password, err = auth.HashPassword(password); err != nil {
				return err
			}
		}

		u := &clinic.User{Username: "admin", Password: password, FullName: "Administrador", Role: "admin", Active: true}
		if err := users.Insert(ctx, u); err != nil {
			return err
		}
		log.Printf("admin user created id=%d mode=%s", u.ID, mode)
		return nil
	})
}

func seedDoctors(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d doctors", count)

	specialties := []string{
		"Cardiología",
		"Dermatología",
		"Medicina General",
		"Traumatología",
		"Endocrinología",
		"Neurología",
		"Pediatría",
		"Psiquiatría",
		"Oftalmología",
		"Otorrinolaringología",
	}

	return inTx(ctx, pool, func(src db.Source) error {
		svc := clinic.NewService(clinic.NewPgRepositories(src), nil, nil)
		for i := 0; i < count; i++ {
			d := &clinic.Doctor{
				Name:      gofakeit.FirstName(),
				Surname:   gofakeit.LastName(),
				Specialty: specialties[gofakeit.Number(0, len(specialties)-1)],
			}
			if err := svc.CreateDoctor(ctx, d); err != nil {
				return fmt.Errorf("doctor %d: %w", i, err)
			}
		}
		log.Println("doctors seeded")
		return nil
	})
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		err := inTx(ctx, pool, func(src db.Source) error {
			svc := clinic.NewService(clinic.NewPgRepositories(src), nil, nil)
			for i := offset; i < end; i++ {
				birth := clinic.CivilDate(gofakeit.DateRange(
					time.Now().AddDate(-90, 0, 0),
					time.Now().AddDate(-1, 0, 0),
				))
				p := &clinic.Patient{
					DNI:       fmt.Sprintf("%08d%s", gofakeit.Number(0, 99999999), strings.ToUpper(gofakeit.LetterN(1))),
					Name:      gofakeit.FirstName(),
					Surname:   gofakeit.LastName(),
					BirthDate: &birth,
					Phone:     gofakeit.Phone(),
					Email:     gofakeit.Email(),
					Address:   gofakeit.Street(),
				}
				if err := svc.CreatePatient(ctx, p); err != nil {
					return fmt.Errorf("patient %d: %w", i, err)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
