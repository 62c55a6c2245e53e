package service

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"gorm.io/datatypes"

	"github.com/losalerces/backend/internal/logger"
	"github.com/losalerces/backend/internal/model"
	"github.com/losalerces/backend/internal/repository"
)

const dateLayout = "2006-01-02"

// CatalogService exposes the business records and quotations over gRPC.
type CatalogService struct {
	clients    repository.ClientRepository
	products   repository.ProductRepository
	staff      repository.StaffRepository
	quotations repository.QuotationRepository
	log        *logger.Logger
}

func NewCatalogService(
	clients repository.ClientRepository,
	products repository.ProductRepository,
	staff repository.StaffRepository,
	quotations repository.QuotationRepository,
	log *logger.Logger,
) *CatalogService {
	if log == nil {
		log = logger.NewNop()
	}
	return &CatalogService{
		clients:    clients,
		products:   products,
		staff:      staff,
		quotations: quotations,
		log:        log.With("grpc", CatalogServiceName),
	}
}

// CreateQuotation expects
// {client_id, quotation_date: "YYYY-MM-DD", name, quantity_of_product,
// products: [{product_id, quantity}], staff_ids: [id]}.
func (s *CatalogService) CreateQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	q, products, staffIDs, err := parseQuotation(req)
	if err != nil {
		return nil, err
	}
	if err := s.quotations.CreateWithLines(ctx, q, products, staffIDs); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("quotation created", "quotationID", q.ID, "clientID", q.ClientID)
	return s.quotationWithLines(ctx, q.ID)
}

// GetQuotation expects {id}.
func (s *CatalogService) GetQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	return s.quotationWithLines(ctx, id)
}

// UpdateQuotation expects {id} plus the CreateQuotation fields; the line set is replaced.
func (s *CatalogService) UpdateQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	q, products, staffIDs, err := parseQuotation(req)
	if err != nil {
		return nil, err
	}
	q.ID = id
	if err := s.quotations.UpdateWithLines(ctx, q, products, staffIDs); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("quotation updated", "quotationID", id)
	return s.quotationWithLines(ctx, id)
}

// DeleteQuotation expects {id}.
func (s *CatalogService) DeleteQuotation(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	if err := s.quotations.Delete(ctx, id); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("quotation deleted", "quotationID", id)
	return mustStruct(map[string]any{"id": id, "deleted": true})
}

// ListClientQuotations expects {client_id} and answers {quotations: [...]} without lines.
func (s *CatalogService) ListClientQuotations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	clientID, err := requiredInt64(req, "client_id")
	if err != nil {
		return nil, err
	}
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, toStatus(err)
	}
	qs, err := s.quotations.ListByClient(ctx, clientID)
	if err != nil {
		return nil, toStatus(err)
	}
	items := make([]any, 0, len(qs))
	for _, q := range qs {
		items = append(items, map[string]any{
			"id":                  q.ID,
			"quotation_date":      time.Time(q.QuotationDate).Format(dateLayout),
			"name":                q.Name,
			"quantity_of_product": q.QuantityOfProduct,
		})
	}
	return mustStruct(map[string]any{"client_id": clientID, "quotations": items})
}

// AddProductLine expects {quotation_id, product_id, quantity}.
func (s *CatalogService) AddProductLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	quotationID, err := requiredInt64(req, "quotation_id")
	if err != nil {
		return nil, err
	}
	productID, err := requiredInt64(req, "product_id")
	if err != nil {
		return nil, err
	}
	qty, err := requiredInt64(req, "quantity")
	if err != nil {
		return nil, err
	}
	line := repository.ProductLine{ProductID: productID, Quantity: int(qty)}
	if err := s.quotations.AddProductLine(ctx, quotationID, line); err != nil {
		return nil, toStatus(err)
	}
	return s.quotationWithLines(ctx, quotationID)
}

// RemoveProductLine expects {quotation_id, product_id}.
func (s *CatalogService) RemoveProductLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	quotationID, productID, err := lineKey(req, "product_id")
	if err != nil {
		return nil, err
	}
	if err := s.quotations.RemoveProductLine(ctx, quotationID, productID); err != nil {
		return nil, toStatus(err)
	}
	return s.quotationWithLines(ctx, quotationID)
}

// AddStaffLine expects {quotation_id, staff_id}.
func (s *CatalogService) AddStaffLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	quotationID, staffID, err := lineKey(req, "staff_id")
	if err != nil {
		return nil, err
	}
	if err := s.quotations.AddStaffLine(ctx, quotationID, staffID); err != nil {
		return nil, toStatus(err)
	}
	return s.quotationWithLines(ctx, quotationID)
}

// RemoveStaffLine expects {quotation_id, staff_id}.
func (s *CatalogService) RemoveStaffLine(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	quotationID, staffID, err := lineKey(req, "staff_id")
	if err != nil {
		return nil, err
	}
	if err := s.quotations.RemoveStaffLine(ctx, quotationID, staffID); err != nil {
		return nil, toStatus(err)
	}
	return s.quotationWithLines(ctx, quotationID)
}

func (s *CatalogService) quotationWithLines(ctx context.Context, id int64) (*structpb.Struct, error) {
	q, err := s.quotations.GetWithLines(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return quotationToStruct(q)
}

func lineKey(req *structpb.Struct, other string) (int64, int64, error) {
	quotationID, err := requiredInt64(req, "quotation_id")
	if err != nil {
		return 0, 0, err
	}
	id, err := requiredInt64(req, other)
	if err != nil {
		return 0, 0, err
	}
	return quotationID, id, nil
}

func parseQuotation(req *structpb.Struct) (*model.Quotation, []repository.ProductLine, []int64, error) {
	clientID, err := requiredInt64(req, "client_id")
	if err != nil {
		return nil, nil, nil, err
	}
	rawDate, err := requiredString(req, "quotation_date")
	if err != nil {
		return nil, nil, nil, err
	}
	day, err := time.Parse(dateLayout, rawDate)
	if err != nil {
		return nil, nil, nil, status.Errorf(codes.InvalidArgument, "quotation_date must be YYYY-MM-DD: %v", err)
	}
	products, err := parseProductLines(req)
	if err != nil {
		return nil, nil, nil, err
	}
	staffIDs, err := parseStaffIDs(req)
	if err != nil {
		return nil, nil, nil, err
	}
	q := &model.Quotation{
		ClientID:          clientID,
		QuotationDate:     datatypes.Date(day),
		Name:              stringField(req, "name"),
		QuantityOfProduct: stringField(req, "quantity_of_product"),
	}
	return q, products, staffIDs, nil
}

func parseProductLines(req *structpb.Struct) ([]repository.ProductLine, error) {
	values := listField(req, "products")
	lines := make([]repository.ProductLine, 0, len(values))
	for i, v := range values {
		item := v.GetStructValue()
		if item == nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be an object", indexed("products", i))
		}
		productID, err := requiredInt64(item, "product_id")
		if err != nil {
			return nil, err
		}
		qty, err := requiredInt64(item, "quantity")
		if err != nil {
			return nil, err
		}
		lines = append(lines, repository.ProductLine{ProductID: productID, Quantity: int(qty)})
	}
	return lines, nil
}

func parseStaffIDs(req *structpb.Struct) ([]int64, error) {
	values := listField(req, "staff_ids")
	ids := make([]int64, 0, len(values))
	for i, v := range values {
		id, err := toInt64(v, indexed("staff_ids", i))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func quotationToStruct(q *model.Quotation) (*structpb.Struct, error) {
	products := make([]any, 0, len(q.ProductLines))
	for _, line := range q.ProductLines {
		item := map[string]any{
			"product_id": line.ProductID,
			"quantity":   line.Quantity,
		}
		if line.Product != nil {
			item["name"] = line.Product.Name
			item["price"] = line.Product.Price.StringFixed(model.MoneyScale)
		}
		products = append(products, item)
	}

	staff := make([]any, 0, len(q.StaffLines))
	for _, line := range q.StaffLines {
		item := map[string]any{"staff_id": line.StaffID}
		if line.Staff != nil {
			item["name"] = line.Staff.Name
			item["lastname"] = line.Staff.Lastname
			item["profession"] = line.Staff.Profession
		}
		staff = append(staff, item)
	}

	return mustStruct(map[string]any{
		"id":                  q.ID,
		"client_id":           q.ClientID,
		"quotation_date":      time.Time(q.QuotationDate).Format(dateLayout),
		"name":                q.Name,
		"quantity_of_product": q.QuantityOfProduct,
		"products":            products,
		"staff":               staff,
		"total":               q.Total().StringFixed(model.MoneyScale),
	})
}
