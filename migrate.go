package ogm

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// UniqueConstraintCypher renders the uniqueness constraint for label.property.
func UniqueConstraintCypher(label, property string, drop bool) string {
	name := quoteIdent(fmt.Sprintf("%s_%s_unique", label, property))
	if drop {
		return fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", name)
	}

	return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (model:%s) REQUIRE model.%s IS UNIQUE",
		name, quoteIdent(label), quoteIdent(property))
}

// ExistsConstraintCypher renders the property existence constraint for label.property.
// Existence constraints need an enterprise server.
func ExistsConstraintCypher(label, property string, drop bool) string {
	name := quoteIdent(fmt.Sprintf("%s_%s_exists", label, property))
	if drop {
		return fmt.Sprintf("DROP CONSTRAINT %s IF EXISTS", name)
	}

	return fmt.Sprintf("CREATE CONSTRAINT %s IF NOT EXISTS FOR (model:%s) REQUIRE model.%s IS NOT NULL",
		name, quoteIdent(label), quoteIdent(property))
}

// IndexCypher renders the index for label.property.
func IndexCypher(label, property string, drop bool) string {
	name := quoteIdent(fmt.Sprintf("%s_%s_index", label, property))
	if drop {
		return fmt.Sprintf("DROP INDEX %s IF EXISTS", name)
	}

	return fmt.Sprintf("CREATE INDEX %s IF NOT EXISTS FOR (model:%s) ON (model.%s)",
		name, quoteIdent(label), quoteIdent(property))
}

// Migrator generates and applies the constraints and indexes declared by the
// registered models.
//
// Install and Drop both run as a single atomic batch. Every statement is
// idempotent on its own (IF NOT EXISTS / IF EXISTS), so a drop of a partially
// installed schema still succeeds.
type Migrator struct {
	client *Client
}

// InstallStatements returns the statements Install runs. For every property of
// every model, in order: a uniqueness constraint (primary or unique), an
// existence constraint (enterprise and required) and an index (indexed).
func (m *Migrator) InstallStatements() []string {
	return m.statements(false)
}

// DropStatements returns the statements Drop runs, in reverse install order.
func (m *Migrator) DropStatements() []string {
	stmts := m.statements(true)
	slices.Reverse(stmts)

	return stmts
}

func (m *Migrator) statements(drop bool) []string {
	var out []string

	enterprise := m.client.Enterprise()

	for _, model := range m.client.models.Models() {
		label := m.constraintLabel(model)

		for _, p := range model.Properties() {
			if p.Unique() {
				out = append(out, UniqueConstraintCypher(label, p.Name(), drop))
			}

			if enterprise && p.Required() {
				out = append(out, ExistsConstraintCypher(label, p.Name(), drop))
			}

			if p.Indexed() {
				out = append(out, IndexCypher(label, p.Name(), drop))
			}
		}
	}

	return out
}

// constraintLabel is the label a model's constraints are declared on: its name,
// or its first label when its nodes do not carry the name.
func (m *Migrator) constraintLabel(model *Model) string {
	labels := model.Labels()
	if len(labels) == 0 || slices.Contains(labels, model.Name()) {
		return model.Name()
	}

	m.client.logger.Warn("model name is not one of its labels; constraining its first label instead",
		zap.String("model", model.Name()),
		zap.Strings("labels", labels),
		zap.String("label", labels[0]))

	return labels[0]
}

// Install creates every constraint and index. A failure rolls back the whole install.
func (m *Migrator) Install(ctx context.Context) error {
	return m.apply(ctx, "install", m.InstallStatements())
}

// Drop removes every constraint and index. A failure rolls back the whole drop.
func (m *Migrator) Drop(ctx context.Context) error {
	return m.apply(ctx, "drop", m.DropStatements())
}

func (m *Migrator) apply(ctx context.Context, op string, stmts []string) error {
	m.client.logger.Info("applying schema",
		zap.String("operation", op),
		zap.Int("statements", len(stmts)))

	if len(stmts) == 0 {
		return nil
	}

	batch := make([]Statement, len(stmts))
	for i, s := range stmts {
		batch[i] = Stmt(s)
	}

	_, err := m.client.Batch(ctx, batch)
	if err != nil {
		return fmt.Errorf("schema %s: %w", op, err)
	}

	return nil
}
