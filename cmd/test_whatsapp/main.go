package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"dokan_app_echo/internal/services"
)

func main() {
	phone := flag.String("phone", "", "Phone number (e.g. 8801712345678)")
	msg := flag.String("msg", "Test message from WahaService", "Message body")
	flag.Parse()

	if *phone == "" {
		log.Fatal("Please provide a phone number using -phone flag")
	}

	// Load envs
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found")
	}

	baseURL := os.Getenv("WAHA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://waha:3000"
	}
	service := services.NewWahaService(baseURL, os.Getenv("WAHA_API_KEY"))

	chatId := services.NormalizeChatID(*phone)
	log.Printf("Sending message to %s: %s", chatId, *msg)

	if err := service.SendMessage(chatId, *msg); err != nil {
		log.Fatalf("Failed to send message: %v", err)
	}

	log.Println("Message sent successfully!")
}
