package service

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/losalerces/backend/internal/model"
)

// CreateClient expects {name, address, phone, email} with optional
// contact_name, contact_lastname, contact_email, contact_phone and
// contacts: [{name, lastname, email, phone}].
func (s *CatalogService) CreateClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	c := &model.Client{
		Name:            stringField(req, "name"),
		Address:         stringField(req, "address"),
		Phone:           stringField(req, "phone"),
		Email:           stringField(req, "email"),
		ContactName:     optionalString(req, "contact_name"),
		ContactLastname: optionalString(req, "contact_lastname"),
		ContactEmail:    optionalString(req, "contact_email"),
		ContactPhone:    optionalString(req, "contact_phone"),
	}
	for i, v := range listField(req, "contacts") {
		item := v.GetStructValue()
		if item == nil {
			return nil, status.Errorf(codes.InvalidArgument, "%s must be an object", indexed("contacts", i))
		}
		c.Contacts = append(c.Contacts, model.Contact{
			Name:     stringField(item, "name"),
			Lastname: stringField(item, "lastname"),
			Email:    stringField(item, "email"),
			Phone:    stringField(item, "phone"),
		})
	}
	if err := s.clients.Create(ctx, c); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("client created", "clientID", c.ID)
	return s.client(ctx, c.ID)
}

// GetClient expects {id} and includes the client's contacts.
func (s *CatalogService) GetClient(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	return s.client(ctx, id)
}

func (s *CatalogService) client(ctx context.Context, id int64) (*structpb.Struct, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	contacts := make([]any, 0, len(c.Contacts))
	for _, ct := range c.Contacts {
		contacts = append(contacts, map[string]any{
			"id":       ct.ID,
			"name":     ct.Name,
			"lastname": ct.Lastname,
			"email":    ct.Email,
			"phone":    ct.Phone,
		})
	}
	out := map[string]any{
		"id":       c.ID,
		"name":     c.Name,
		"address":  c.Address,
		"phone":    c.Phone,
		"email":    c.Email,
		"contacts": contacts,
	}
	for key, v := range map[string]*string{
		"contact_name":     c.ContactName,
		"contact_lastname": c.ContactLastname,
		"contact_email":    c.ContactEmail,
		"contact_phone":    c.ContactPhone,
	} {
		if v != nil {
			out[key] = *v
		}
	}
	return mustStruct(out)
}

// CreateProduct expects {name, note, price}; price may be a string or a number.
func (s *CatalogService) CreateProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	price, err := decimalField(req, "price")
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:  stringField(req, "name"),
		Note:  stringField(req, "note"),
		Price: price,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("product created", "productID", p.ID)
	return productToStruct(p)
}

// GetProduct expects {id}.
func (s *CatalogService) GetProduct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return productToStruct(p)
}

func productToStruct(p *model.Product) (*structpb.Struct, error) {
	return mustStruct(map[string]any{
		"id":    p.ID,
		"name":  p.Name,
		"note":  p.Note,
		"price": p.Price.StringFixed(model.MoneyScale),
	})
}

// CreateStaff expects {name, lastname, profession, salary, email, address, phone}.
func (s *CatalogService) CreateStaff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	salary, err := decimalField(req, "salary")
	if err != nil {
		return nil, err
	}
	m := &model.Staff{
		Name:       stringField(req, "name"),
		Lastname:   stringField(req, "lastname"),
		Profession: stringField(req, "profession"),
		Salary:     salary,
		Email:      stringField(req, "email"),
		Address:    stringField(req, "address"),
		Phone:      stringField(req, "phone"),
	}
	if err := s.staff.Create(ctx, m); err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("staff created", "staffID", m.ID)
	return staffToStruct(m)
}

// GetStaff expects {id}.
func (s *CatalogService) GetStaff(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := requiredInt64(req, "id")
	if err != nil {
		return nil, err
	}
	m, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return staffToStruct(m)
}

func staffToStruct(m *model.Staff) (*structpb.Struct, error) {
	return mustStruct(map[string]any{
		"id":         m.ID,
		"name":       m.Name,
		"lastname":   m.Lastname,
		"profession": m.Profession,
		"salary":     m.Salary.StringFixed(model.MoneyScale),
		"email":      m.Email,
		"address":    m.Address,
		"phone":      m.Phone,
	})
}
