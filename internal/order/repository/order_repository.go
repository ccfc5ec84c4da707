package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

const orderColumns = `
		id, orderNumber, customerId, companyId, orderType, status,
		subtotal, discountAmount, taxAmount, shippingAmount, total, currency,
		billingAddressId, shippingAddressId, couponCode, notes,
		approvedDate, processedDate, shippedDate, deliveredDate, cancelledDate,
		paymentTermDays, dueDate, approvalStatus, approvedBy, purchaseOrderNumber,
		createdAt, updatedAt`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, tx *sql.Tx, order *domain.Order) (int64, error) {
	query := `
		INSERT INTO Orders (
			orderNumber, customerId, companyId, orderType, status,
			subtotal, discountAmount, taxAmount, shippingAmount, total, currency,
			billingAddressId, shippingAddressId, couponCode, notes,
			approvedDate, paymentTermDays, dueDate, approvalStatus, approvedBy, purchaseOrderNumber,
			createdAt, updatedAt
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		order.OrderNumber, order.CustomerID, order.CompanyID, string(order.Type), string(order.Status),
		order.Subtotal, order.DiscountAmount, order.TaxAmount, order.ShippingAmount, order.Total, order.Currency,
		order.BillingAddressID, order.ShippingAddressID, order.CouponCode, order.Notes,
		order.ApprovedDate, order.PaymentTermDays, order.DueDate, order.ApprovalStatus, order.ApprovedBy, order.PurchaseOrderNumber,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return id, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM Orders WHERE id = ?`
	return scanOrder(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the order row so concurrent transitions of the same
// order serialise.
func (r *MySQLOrderRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Order, error) {
	query := `SELECT` + orderColumns + ` FROM Orders WHERE id = ? FOR UPDATE`
	return scanOrder(tx.QueryRowContext(ctx, query, id), id)
}

// UpdateStatus persists the lifecycle fields of order: status, milestone
// dates and approval data. Amounts and items are never rewritten.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	query := `
		UPDATE Orders
		SET status = ?, approvedDate = ?, processedDate = ?, shippedDate = ?,
		    deliveredDate = ?, cancelledDate = ?, approvalStatus = ?, approvedBy = ?, updatedAt = ?
		WHERE id = ?`

	result, err := tx.ExecContext(ctx, query,
		string(order.Status), order.ApprovedDate, order.ProcessedDate, order.ShippedDate,
		order.DeliveredDate, order.CancelledDate, order.ApprovalStatus, order.ApprovedBy, order.UpdatedAt,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewEntityNotFoundError("order", order.ID)
	}

	return nil
}

func scanOrder(row rowScanner, id int64) (*domain.Order, error) {
	var (
		order     domain.Order
		orderType string
		status    string
	)

	err := row.Scan(
		&order.ID, &order.OrderNumber, &order.CustomerID, &order.CompanyID, &orderType, &status,
		&order.Subtotal, &order.DiscountAmount, &order.TaxAmount, &order.ShippingAmount, &order.Total, &order.Currency,
		&order.BillingAddressID, &order.ShippingAddressID, &order.CouponCode, &order.Notes,
		&order.ApprovedDate, &order.ProcessedDate, &order.ShippedDate, &order.DeliveredDate, &order.CancelledDate,
		&order.PaymentTermDays, &order.DueDate, &order.ApprovalStatus, &order.ApprovedBy, &order.PurchaseOrderNumber,
		&order.CreatedAt, &order.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewEntityNotFoundError("order", id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	order.Type = domain.OrderType(orderType)
	order.Status = domain.OrderStatus(status)

	return &order, nil
}
