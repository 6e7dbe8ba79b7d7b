// Command generate builds an ent client from db/ent/schema into gen/ent. The services
// use the sqlx store; the generated client is for ad hoc tooling and is not committed.
package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

func main() {
	err := entc.Generate(
		"./db/ent/schema",
		&gen.Config{
			Target:   "gen/ent",
			Package:  "github.com/joseph-ayodele/procurement-tracker/gen/ent",
			Features: []gen.Feature{gen.FeatureUpsert},
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
