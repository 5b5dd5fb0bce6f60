package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	EquipmentCollection   *mongo.Collection
	CartsCollection       *mongo.Collection
	BookingsCollection    *mongo.Collection
	TransactionCollection *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "medirentdb"
	}

	EquipmentCollection = Client.Database(dbName).Collection("equipment")
	CartsCollection = Client.Database(dbName).Collection("carts")
	BookingsCollection = Client.Database(dbName).Collection("bookings")
	TransactionCollection = Client.Database(dbName).Collection("transactions")
	IdempotencyCollection = Client.Database(dbName).Collection("idempotency")
}
