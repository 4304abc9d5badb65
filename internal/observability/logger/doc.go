// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Init se llama una vez en main; los middlewares HTTP inyectan un logger con
// request_id / tenant_id y los services lo recuperan con From(ctx):
//
//	log := logger.From(ctx).With(
//	    logger.Layer("service"),
//	    logger.Component("tickets"),
//	    logger.Op("Create"),
//	)
//	log.Info("ticket created", logger.EntityID(t.ID))
//
// Sin contexto se usa el singleton:
//
//	logger.L().Info("crm started")
package logger
