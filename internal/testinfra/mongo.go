// Productrec - Neighbor-Based Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/productrec

//go:build integration

package testinfra

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMongoImage is the MongoDB image used for rating source tests.
	DefaultMongoImage = "mongo:7"

	// DefaultMongoPort is the MongoDB wire protocol port.
	DefaultMongoPort = "27017"
)

// MongoContainer is a running MongoDB instance.
type MongoContainer struct {
	testcontainers.Container
	URI string
}

// MongoOption configures the MongoDB container.
type MongoOption func(*containerSpec)

// WithMongoImage sets a custom MongoDB image.
func WithMongoImage(image string) MongoOption {
	return func(s *containerSpec) {
		s.image = image
	}
}

// NewMongoContainer starts MongoDB without authentication.
//
//	mongo, err := testinfra.NewMongoContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer testinfra.CleanupContainer(t, ctx, mongo.Container)
//
//	src, err := ratings.NewMongoSource(ctx, ratings.MongoConfig{URI: mongo.URI, ...}, ratings.Columns{})
func NewMongoContainer(ctx context.Context, opts ...MongoOption) (*MongoContainer, error) {
	spec := containerSpec{
		image:        DefaultMongoImage,
		port:         DefaultMongoPort,
		waitFor:      wait.ForLog("Waiting for connections"),
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(&spec)
	}

	container, endpoint, err := startContainer(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &MongoContainer{
		Container: container,
		URI:       "mongodb://" + endpoint,
	}, nil
}
