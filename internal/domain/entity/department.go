package entity

import "time"

// Department departamento al que puede pertenecer un recurso.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
