package handlers

import (
	stderrors "errors"
	"net/http"
	"os"

	"household-ledger/internal/dto"
	"household-ledger/internal/errors"
	"household-ledger/internal/models"
	"household-ledger/internal/services"
	"household-ledger/internal/validation"

	"github.com/labstack/echo/v4"
)

// ReceiptHandler handles receipt upload, OCR and save requests
type ReceiptHandler struct {
	receiptService services.ReceiptServiceInterface
	fileService    services.FileServiceInterface
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService services.ReceiptServiceInterface, fileService services.FileServiceInterface) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		fileService:    fileService,
	}
}

// ScanReceipt stores an uploaded receipt image and reads it with OCR
// @Summary Scan receipt
// @Description Upload a receipt image (jpeg, png, heic, webp; at most 10 MiB) and get an editable draft
// @Tags Receipts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Receipt image"
// @Success 200 {object} dto.ReceiptOCRResponse "Extracted receipt draft"
// @Failure 400 {object} errors.ErrorResponse "RECEIPT_001 - Unsupported type, RECEIPT_002 - Too large, RECEIPT_003 - Empty, RECEIPT_004 - Missing file"
// @Failure 429 {object} errors.ErrorResponse "SYSTEM_006 - Rate limit exceeded"
// @Failure 500 {object} errors.ErrorResponse "OCR_001 - OCR unavailable or OCR_002 - Unreadable receipt"
// @Router /receipt/ocr [post]
func (h *ReceiptHandler) ScanReceipt(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return SendError(c, errors.ReceiptFileMissing)
		}
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid multipart form"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return SendSystemError(c, err)
	}
	defer file.Close()

	data, err := h.receiptService.Scan(
		c.Request().Context(),
		fileHeader.Filename,
		fileHeader.Header.Get(echo.HeaderContentType),
		fileHeader.Size,
		file,
	)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewReceiptOCRResponse(data))
}

// SaveReceipt turns a reviewed receipt draft into a transaction
// @Summary Save receipt
// @Tags Receipts
// @Accept json
// @Produce json
// @Param request body dto.SaveReceiptRequest true "Reviewed receipt"
// @Success 201 {object} dto.TransactionResponse "Created transaction"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001 - Invalid request or CATEGORY_004 - Unknown category"
// @Router /receipt/save [post]
func (h *ReceiptHandler) SaveReceipt(c echo.Context) error {
	var req dto.SaveReceiptRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	date, err := validation.ParseDate(req.Date)
	if err != nil {
		return SendError(c, errors.ValidationInvalidDate)
	}

	items := make([]models.ReceiptItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.ReceiptItem{Name: item.Name, Price: toAmount(item.Price)})
	}

	created, err := h.receiptService.Save(c.Request().Context(), models.ReceiptSaveInput{
		Type:             req.Type,
		Date:             date,
		Store:            req.Store,
		Items:            items,
		Total:            toAmount(req.Total),
		Category:         req.Category,
		Memo:             req.Memo,
		ReceiptImagePath: req.ReceiptImagePath,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewTransactionResponse(created))
}

// ServeFile streams a stored receipt image
// @Summary Get stored file
// @Tags Receipts
// @Produce image/jpeg,image/png,image/heic,image/webp
// @Param path path string true "Path relative to the upload directory"
// @Success 200 {file} file "Image"
// @Failure 404 {object} errors.ErrorResponse "RECEIPT_005 - File not found"
// @Router /files/{path} [get]
func (h *ReceiptHandler) ServeFile(c echo.Context) error {
	relativePath := c.Param("*")

	fullPath, err := h.fileService.Resolve(relativePath)
	if err != nil {
		return SendError(c, errors.ReceiptFileNotFound)
	}

	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		return SendError(c, errors.ReceiptFileNotFound)
	}

	c.Response().Header().Set(echo.HeaderContentType, services.MimeTypeFromPath(relativePath))
	return c.File(fullPath)
}
