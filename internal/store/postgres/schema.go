//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package postgres implements the warehouse source and target on PostgreSQL.
package postgres

import (
	"context"
	"fmt"
)

// Schema SQL for the transactional (source) tables. References between
// tables are not enforced; the ETL tolerates orphaned rows.
const createSourceSchemaSQL = `
-- Customers of the tailoring service
CREATE TABLE IF NOT EXISTS customers (
    customer_id    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name           VARCHAR(100) NOT NULL,
    phone          VARCHAR(20),
    address        TEXT,
    gender         VARCHAR(18),
    registered_on  DATE,
    customer_type  VARCHAR(20),
    referral       VARCHAR(50)
);

-- Tailors doing the work
CREATE TABLE IF NOT EXISTS tailors (
    tailor_id   BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name        VARCHAR(100) NOT NULL,
    specialty   VARCHAR(100),
    started_on  DATE,
    status      VARCHAR(20)
);

-- Fabric stock
CREATE TABLE IF NOT EXISTS materials (
    material_id      BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name             VARCHAR(100) NOT NULL,
    category         VARCHAR(50),
    supplier         VARCHAR(100),
    price_per_meter  NUMERIC(10,2),
    stock_meters     NUMERIC(10,2),
    unit             VARCHAR(10),
    received_on      DATE,
    minimum_stock    NUMERIC(10,2)
);

-- Services on offer
CREATE TABLE IF NOT EXISTS services (
    service_id      BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name            VARCHAR(50) NOT NULL,
    description     TEXT,
    base_price      NUMERIC(10,2),
    estimated_days  INTEGER
);

-- Order workflow states
CREATE TABLE IF NOT EXISTS order_statuses (
    status_id    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name         VARCHAR(30) NOT NULL,
    description  TEXT
);

-- Order headers
CREATE TABLE IF NOT EXISTS orders (
    order_id              BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    customer_id           BIGINT NOT NULL,
    tailor_id             BIGINT NOT NULL,
    service_id            BIGINT NOT NULL,
    status_id             BIGINT NOT NULL,
    order_date            DATE NOT NULL,
    estimated_completion  DATE,
    completion_date       DATE,
    channel               VARCHAR(30),
    payment_status        VARCHAR(28),
    total_price           NUMERIC(12,2) NOT NULL,
    rating                INTEGER,
    customer_notes        TEXT
);

-- Order lines, one per material
CREATE TABLE IF NOT EXISTS order_details (
    detail_id        BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    order_id         BIGINT NOT NULL,
    material_id      BIGINT NOT NULL,
    color            VARCHAR(50),
    garment_model    VARCHAR(50),
    quantity_meters  NUMERIC(10,2) NOT NULL,
    price_per_meter  NUMERIC(10,2),
    subtotal         NUMERIC(10,2),
    tailor_notes     TEXT
);

-- Payments against orders
CREATE TABLE IF NOT EXISTS payments (
    payment_id        BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    order_id          BIGINT NOT NULL,
    method            VARCHAR(50),
    payment_date      DATE,
    amount            NUMERIC(10,2),
    status            VARCHAR(20),
    discount          NUMERIC(10,2),
    reference_number  VARCHAR(50),
    cashier           VARCHAR(50),
    notes             TEXT
);

CREATE INDEX IF NOT EXISTS idx_order_details_order_id ON order_details(order_id);
CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id);
`

// Schema SQL for the star schema. Dimension natural keys are UNIQUE so
// inserts can be made insert-if-absent; fact_order has no unique key.
const createWarehouseSchemaSQL = `
CREATE TABLE IF NOT EXISTS dim_customer (
    customer_sk    BIGINT PRIMARY KEY,
    customer_id    BIGINT NOT NULL UNIQUE,
    name           VARCHAR(100) NOT NULL,
    phone          VARCHAR(20),
    address        TEXT,
    gender         VARCHAR(18),
    registered_on  DATE,
    customer_type  VARCHAR(20),
    referral       VARCHAR(50)
);

CREATE TABLE IF NOT EXISTS dim_tailor (
    tailor_sk   BIGINT PRIMARY KEY,
    tailor_id   BIGINT NOT NULL UNIQUE,
    name        VARCHAR(100) NOT NULL,
    specialty   VARCHAR(100),
    started_on  DATE,
    status      VARCHAR(20)
);

CREATE TABLE IF NOT EXISTS dim_material (
    material_sk      BIGINT PRIMARY KEY,
    material_id      BIGINT NOT NULL UNIQUE,
    name             VARCHAR(100) NOT NULL,
    category         VARCHAR(50),
    supplier         VARCHAR(100),
    price_per_meter  NUMERIC(10,2),
    unit             VARCHAR(10)
);

CREATE TABLE IF NOT EXISTS dim_service (
    service_sk      BIGINT PRIMARY KEY,
    service_id      BIGINT NOT NULL UNIQUE,
    name            VARCHAR(50) NOT NULL,
    description     TEXT,
    base_price      NUMERIC(10,2),
    estimated_days  INTEGER
);

CREATE TABLE IF NOT EXISTS dim_order_status (
    status_sk    BIGINT PRIMARY KEY,
    status_id    BIGINT NOT NULL UNIQUE,
    name         VARCHAR(30) NOT NULL,
    description  TEXT
);

CREATE TABLE IF NOT EXISTS dim_payment (
    payment_sk    BIGINT PRIMARY KEY,
    payment_id    BIGINT NOT NULL UNIQUE,
    method        VARCHAR(50),
    payment_date  DATE,
    status        VARCHAR(20),
    discount      NUMERIC(10,2)
);

CREATE TABLE IF NOT EXISTS dim_date (
    date_id        INTEGER PRIMARY KEY,
    full_date      DATE NOT NULL,
    day            SMALLINT NOT NULL,
    month          SMALLINT NOT NULL,
    year           INTEGER NOT NULL,
    quarter        SMALLINT NOT NULL,
    week_of_month  SMALLINT NOT NULL
);

CREATE TABLE IF NOT EXISTS fact_order (
    fact_order_sk    BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    order_id         BIGINT NOT NULL,
    line_detail_id   BIGINT NOT NULL,
    date_id          INTEGER NOT NULL,
    customer_sk      BIGINT NOT NULL,
    tailor_sk        BIGINT NOT NULL,
    material_sk      BIGINT NOT NULL,
    service_sk       BIGINT NOT NULL,
    status_sk        BIGINT NOT NULL,
    payment_sk       BIGINT,
    item_count       INTEGER NOT NULL,
    quantity_meters  NUMERIC(10,2) NOT NULL,
    total_price      NUMERIC(12,2) NOT NULL,
    discount         NUMERIC(10,2) NOT NULL,
    rating           INTEGER,
    processing_days  INTEGER
);

CREATE INDEX IF NOT EXISTS idx_fact_order_line ON fact_order(order_id, line_detail_id);
CREATE INDEX IF NOT EXISTS idx_fact_order_date ON fact_order(date_id);
`

const dropSourceSchemaSQL = `
DROP TABLE IF EXISTS payments CASCADE;
DROP TABLE IF EXISTS order_details CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS order_statuses CASCADE;
DROP TABLE IF EXISTS services CASCADE;
DROP TABLE IF EXISTS materials CASCADE;
DROP TABLE IF EXISTS tailors CASCADE;
DROP TABLE IF EXISTS customers CASCADE;
`

const dropWarehouseSchemaSQL = `
DROP TABLE IF EXISTS fact_order CASCADE;
DROP TABLE IF EXISTS dim_date CASCADE;
DROP TABLE IF EXISTS dim_payment CASCADE;
DROP TABLE IF EXISTS dim_order_status CASCADE;
DROP TABLE IF EXISTS dim_service CASCADE;
DROP TABLE IF EXISTS dim_material CASCADE;
DROP TABLE IF EXISTS dim_tailor CASCADE;
DROP TABLE IF EXISTS dim_customer CASCADE;
`

// CreateSourceSchema creates the transactional tables.
func CreateSourceSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createSourceSchemaSQL); err != nil {
		return fmt.Errorf("create source schema: %w", err)
	}
	return nil
}

// CreateWarehouseSchema creates the dimension and fact tables.
func CreateWarehouseSchema(ctx context.Context, db DB) error {
	if _, err := db.Exec(ctx, createWarehouseSchemaSQL); err != nil {
		return fmt.Errorf("create warehouse schema: %w", err)
	}
	return nil
}

// DropSourceSchema drops the transactional tables.
func DropSourceSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, dropSourceSchemaSQL)
	return err
}

// DropWarehouseSchema drops the dimension and fact tables.
func DropWarehouseSchema(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, dropWarehouseSchemaSQL)
	return err
}

// HasSourceData reports whether any transactional table already holds rows.
func HasSourceData(ctx context.Context, db DB) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM customers)
            OR EXISTS (SELECT 1 FROM orders)
            OR EXISTS (SELECT 1 FROM payments)
    `).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check source data: %w", err)
	}
	return exists, nil
}
