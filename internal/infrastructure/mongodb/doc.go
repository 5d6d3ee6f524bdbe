// Package mongodb connects Fieldtask Core to MongoDB using
// go.mongodb.org/mongo-driver. It only manages the connection lifecycle;
// document access lives in internal/document.
package mongodb
