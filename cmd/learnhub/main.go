// Command learnhub serves the course, enrollment, progress and upload API.
package main

import (
	"context"
	"log"

	"github.com/dalemusser/learnhub/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
