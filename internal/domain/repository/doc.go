// Package repository define las entidades del CRM y los contratos de
// repositorio, independientes del almacenamiento (memoria o PostgreSQL).
//
// Las implementaciones viven en internal/store/adapters/.
//
//	┌─────────────────────────────────────────────────────┐
//	│           Services / Controllers / Workers          │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	                        ▼
//	┌─────────────────────────────────────────────────────┐
//	│        domain/repository (interfaces)               │
//	│  CustomerRepository, DealRepository, RBACRepository │
//	└─────────────────────────────────────────────────────┘
//	                        │
//	              ┌─────────┴─────────┐
//	              ▼                   ▼
//	      ┌─────────────┐     ┌─────────────┐
//	      │  adapters/  │     │  adapters/  │
//	      │   memory    │     │     pg      │
//	      └─────────────┘     └─────────────┘
//
// Convenciones:
//   - Context siempre es el primer parámetro.
//   - Los repositorios del plano de datos reciben tenantID explícito; una fila
//     de otro tenant se reporta como ErrNotFound.
//   - Los importes son enteros en centavos (ValueCents, UnitPriceCents...).
//   - Errores de dominio en errors.go.
package repository
