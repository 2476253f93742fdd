package core

import (
	"errors"
	"time"
)

type (
	// Jar is a named savings goal fetched from the FinJar backend.
	// SavedAmount is the backend's cached projection of the deposit sum;
	// totals trust it rather than recomputing from the deposit list, so the
	// two may diverge until the next refresh.
	Jar struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		Description  string    `json:"description,omitempty"`
		TargetAmount float64   `json:"targetAmount"`
		SavedAmount  float64   `json:"savedAmount"`
		CreatedDate  time.Time `json:"createdDate"`
	}

	// Deposit is a single contribution to a jar, tagged with the owning
	// jar's ID and title at fetch time.
	Deposit struct {
		ID          string    `json:"id"`
		Amount      float64   `json:"amount"`
		Date        time.Time `json:"date"`
		Description string    `json:"description,omitempty"`
		JarID       string    `json:"jarId"`
		JarTitle    string    `json:"jarTitle"`
	}
)

var (
	ErrInvalidPeriod = errors.New("invalid period")
)

// UnnamedJarTitle is the display fallback when the backend sends no jar name.
const UnnamedJarTitle = "Unnamed Jar"

// AllJarsFilter selects every jar; anything else is matched against Jar.ID.
const AllJarsFilter = "all"
