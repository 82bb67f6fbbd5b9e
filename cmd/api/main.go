package main

import (
  "fmt"
  "os"

  "github.com/yungbote/tripflow-backend/internal/app"
)

func main() {
  application, err := app.New()
  if err != nil {
    fmt.Printf("failed to initialize app: %v\n", err)
    os.Exit(1)
  }
  defer application.Close()

  port := os.Getenv("PORT")
  if port == "" {
    port = "8080"
  }

  if err := application.Run(":" + port); err != nil {
    fmt.Printf("server exited: %v\n", err)
    os.Exit(1)
  }
}
