package handlers

import (
	"context"
	"net/http"
	"testing"

	"household-ledger/internal/dto"
	"household-ledger/internal/models"
	"household-ledger/internal/services"
	"household-ledger/internal/services/service_mocks"

	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type CategoryHandlerTestSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	echo        *echo.Echo
	mockService *service_mocks.MockCategoryServiceInterface
	handler     *CategoryHandler
}

func TestCategoryHandlerSuite(t *testing.T) {
	suite.Run(t, new(CategoryHandlerTestSuite))
}

func (s *CategoryHandlerTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.echo = newTestEcho()
	s.mockService = service_mocks.NewMockCategoryServiceInterface(s.ctrl)
	s.handler = NewCategoryHandler(s.mockService)
}

func (s *CategoryHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CategoryHandlerTestSuite) TestListCategories_FilteredByType() {
	c, rec := newContext(s.echo, http.MethodGet, "/api/categories?type=income", "")
	s.mockService.EXPECT().List(gomock.Any(), models.TransactionTypeIncome).Return([]models.Category{
		{ID: uuid.New(), Name: "급여", Type: models.TransactionTypeIncome, Color: "#4ECDC4"},
		{ID: uuid.New(), Name: "부수입", Type: models.TransactionTypeIncome, Color: "#95E1D3"},
	}, nil)

	s.Require().NoError(s.handler.ListCategories(c))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.ListCategoriesResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.Equal(2, response.Total)
	s.Equal("급여", response.Items[0].Name)
}

func (s *CategoryHandlerTestSuite) TestListCategories_InvalidType() {
	c, rec := newContext(s.echo, http.MethodGet, "/api/categories?type=transfer", "")

	s.Require().NoError(s.handler.ListCategories(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *CategoryHandlerTestSuite) TestCreateCategory() {
	c, rec := newContext(s.echo, http.MethodPost, "/api/categories", `{"name":"반려동물","type":"expense","color":"#AABBCC","icon":"pets"}`)
	s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, category *models.Category) (*models.Category, error) {
			s.Equal("반려동물", category.Name)
			s.Equal("#AABBCC", category.Color)
			category.ID = uuid.New()
			return category, nil
		})

	s.Require().NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusCreated, rec.Code)
}

func (s *CategoryHandlerTestSuite) TestCreateCategory_BadColor() {
	c, _ := newContext(s.echo, http.MethodPost, "/api/categories", `{"name":"반려동물","type":"expense","color":"red"}`)

	err := s.handler.CreateCategory(c)
	s.IsType(validator.ValidationErrors{}, err)
}

func (s *CategoryHandlerTestSuite) TestCreateCategory_DuplicateName() {
	c, rec := newContext(s.echo, http.MethodPost, "/api/categories", `{"name":"식비","type":"expense","color":"#FF6B6B"}`)
	s.mockService.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, services.ErrDuplicateCategoryName)

	s.Require().NoError(s.handler.CreateCategory(c))
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("CATEGORY_002", decodeError(rec).Code)
}

func (s *CategoryHandlerTestSuite) TestUpdateCategory_Rename() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodPut, "/api/categories/"+id.String(), `{"name":"외식"}`)
	s.mockService.EXPECT().Update(gomock.Any(), id, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ uuid.UUID, patch models.CategoryPatch) (*models.Category, error) {
			s.Require().NotNil(patch.Name)
			s.Equal("외식", *patch.Name)
			s.Nil(patch.Color)
			return &models.Category{ID: id, Name: *patch.Name, Type: models.TransactionTypeExpense, Color: "#FF6B6B"}, nil
		})

	s.Require().NoError(s.handler.UpdateCategory(withID(c, id.String())))
	s.Equal(http.StatusOK, rec.Code)

	var response dto.CategoryResponse
	s.Require().NoError(decodeBody(rec, &response))
	s.Equal("외식", response.Name)
}

func (s *CategoryHandlerTestSuite) TestGetCategory_NotFound() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodGet, "/api/categories/"+id.String(), "")
	s.mockService.EXPECT().Get(gomock.Any(), id).Return(nil, services.ErrCategoryNotFound)

	s.Require().NoError(s.handler.GetCategory(withID(c, id.String())))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("CATEGORY_001", decodeError(rec).Code)
}

func (s *CategoryHandlerTestSuite) TestDeleteCategory_InUse() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodDelete, "/api/categories/"+id.String(), "")
	s.mockService.EXPECT().Delete(gomock.Any(), id).Return(&services.CategoryInUseError{Name: "식비", Count: 3})

	s.Require().NoError(s.handler.DeleteCategory(withID(c, id.String())))
	s.Equal(http.StatusBadRequest, rec.Code)

	response := decodeError(rec)
	s.Equal("CATEGORY_003", response.Code)
	s.Contains(response.Detail, "3 transactions")
}

func (s *CategoryHandlerTestSuite) TestDeleteCategory() {
	id := uuid.New()
	c, rec := newContext(s.echo, http.MethodDelete, "/api/categories/"+id.String(), "")
	s.mockService.EXPECT().Delete(gomock.Any(), id).Return(nil)

	s.Require().NoError(s.handler.DeleteCategory(withID(c, id.String())))
	s.Equal(http.StatusOK, rec.Code)
}
