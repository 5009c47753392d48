package table

// seed.go maps the one-shot remote seed fetch into rows. The fetch runs
// once at startup, outside any request path; a failure is logged by the
// caller and the prior state stays authoritative.

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
)

// SeedUser is the loosely-typed record shape returned by the seed data
// source.
type SeedUser struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Company  struct {
		Name string `json:"name"`
	} `json:"company"`
	Address struct {
		City string `json:"city"`
	} `json:"address"`
}

// FetchSeed performs the seed fetch and maps the result into rows.
func FetchSeed(ctx context.Context, client *http.Client, url string) ([]Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build seed request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch seed data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("seed source returned status %d", resp.StatusCode)
	}

	var users []SeedUser
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode seed payload: %w", err)
	}

	return MapSeedUsers(users), nil
}

// MapSeedUsers converts seed records into rows. Name falls back to the
// username and then to a synthesized "User N"; a missing email gets a
// placeholder; age is drawn uniformly from [18, 60]; role is the fixed
// default. The remaining source fields carry through as dynamic fields.
func MapSeedUsers(users []SeedUser) []Row {
	rows := make([]Row, len(users))
	for i, u := range users {
		name := u.Name
		if name == "" {
			name = u.Username
		}
		if name == "" {
			name = fmt.Sprintf("User %d", i+1)
		}

		email := u.Email
		if email == "" {
			email = fmt.Sprintf("user%d@example.com", i+1)
		}

		rows[i] = Row{
			FieldID:    strconv.Itoa(u.ID),
			FieldName:  name,
			FieldEmail: email,
			FieldAge:   float64(18 + rand.Intn(43)),
			FieldRole:  DefaultRole,
			"phone":    u.Phone,
			"website":  u.Website,
			"company":  u.Company.Name,
			"address":  u.Address.City,
		}
	}
	return rows
}
