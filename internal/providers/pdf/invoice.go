package pdf

import (
	"bytes"
	"context"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type InvoiceData struct {
	PropertyName    string
	PropertyAddress string
	PropertyEmail   string
	InvoiceNumber   string
	IssueDate       string
	DueDate         string
	Period          string
	Status          string

	TenantName    string
	TenantAddress string
	TenantEmail   string
	RoomLabel     string

	Items []InvoiceItem

	BaseAmount  string
	TaxAmount   string
	Withholding string
	Total       string
	AmountDue   string

	BankDetails string
}

type InvoiceItem struct {
	Description string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(10,
		text.NewCol(12, "Rent Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(20,
		col.New(6).Add(
			text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+invoice.IssueDate, props.Text{Top: 4}),
			text.New("Date due: "+invoice.DueDate, props.Text{Top: 8}),
			text.New("Rental period: "+invoice.Period, props.Text{Top: 12}),
		),
		col.New(6).Add(
			text.New("Status: "+invoice.Status, props.Text{Top: 0, Style: fontstyle.Bold}),
		),
	)

	m.AddRow(40,
		col.New(6).Add(
			text.New(invoice.PropertyName, props.Text{Style: fontstyle.Bold}),
			text.New(invoice.PropertyAddress, props.Text{Top: 5}),
			text.New(invoice.PropertyEmail, props.Text{Top: 20}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.TenantName, props.Text{Top: 5}),
			text.New("Room "+invoice.RoomLabel, props.Text{Top: 9}),
			text.New(invoice.TenantAddress, props.Text{Top: 13}),
			text.New(invoice.TenantEmail, props.Text{Top: 25}),
		),
	)

	m.AddRow(15,
		text.NewCol(12, invoice.AmountDue+" due "+invoice.DueDate, props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   5,
		}),
	)

	m.AddRow(25,
		text.NewCol(12, invoice.BankDetails, props.Text{
			Size: 9,
			Top:  0,
		}),
	)

	m.AddRow(10,
		text.NewCol(9, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range invoice.Items {
		m.AddRow(15,
			text.NewCol(9, item.Description, props.Text{Size: 9}),
			text.NewCol(3, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Base rent", props.Text{Size: 9}),
		text.NewCol(2, invoice.BaseAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Tax", props.Text{Size: 9}),
		text.NewCol(2, invoice.TaxAmount, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Withholding", props.Text{Size: 9}),
		text.NewCol(2, invoice.Withholding, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Amount due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, invoice.AmountDue, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}
