package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/courseforge/courseforge-backend/internal/docgen"
	"github.com/courseforge/courseforge-backend/internal/docgen/pptx"
	"github.com/courseforge/courseforge-backend/internal/logger"
	"github.com/courseforge/courseforge-backend/internal/repos"
	"github.com/courseforge/courseforge-backend/internal/types"
)

type fakeCourseRepo struct {
	repos.CourseRepo
	course *types.Course
}

func (f *fakeCourseRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.course, nil
}

type fakeUnitRepo struct {
	repos.UnitRepo
	unit *types.Unit
}

func (f *fakeUnitRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Unit, error) {
	if f.unit == nil || f.unit.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.unit, nil
}

type fakeLessonRepo struct {
	repos.LessonRepo
	lesson *types.Lesson
}

func (f *fakeLessonRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.Lesson, error) {
	if f.lesson == nil || f.lesson.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return f.lesson, nil
}

type fakeCompetencyRepo struct {
	repos.CompetencyRepo
	competencies []*types.Competency
}

func (f *fakeCompetencyRepo) GetByCourseID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Competency, error) {
	return f.competencies, nil
}

type fakeActivityRepo struct {
	repos.ActivityRepo
	activities []*types.Activity
}

func (f *fakeActivityRepo) GetByLessonID(_ context.Context, _ *gorm.DB, _ uuid.UUID) ([]*types.Activity, error) {
	return f.activities, nil
}

type fakeDocumentRepo struct {
	repos.GeneratedDocumentRepo
	created []*types.GeneratedDocument
	deleted []uuid.UUID
}

func (f *fakeDocumentRepo) Create(_ context.Context, _ *gorm.DB, docs []*types.GeneratedDocument) ([]*types.GeneratedDocument, error) {
	f.created = append(f.created, docs...)
	return docs, nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*types.GeneratedDocument, error) {
	for _, d := range f.created {
		if d.StoragePath != "" && d.ID == id {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDocumentRepo) Delete(_ context.Context, _ *gorm.DB, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTemplateService struct {
	templates map[string][]byte
}

func (f *fakeTemplateService) TemplateBytes(id string) ([]byte, error) {
	data, ok := f.templates[id]
	if !ok {
		return nil, fmt.Errorf("reading template %q: not found", id)
	}
	return data, nil
}

func (f *fakeTemplateService) ManifestDiscoverer() *pptx.ManifestDiscoverer { return nil }

func testFixture(t *testing.T) (DocumentGenerationService, *fakeDocumentRepo, DocumentStorage, GenerateRequest) {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	storage := testStorage(t)

	courseID := uuid.New()
	unitID := uuid.New()
	lessonID := uuid.New()
	course := &types.Course{ID: courseID, Title: "Intro Biology"}
	unit := &types.Unit{ID: unitID, CourseID: courseID, Title: "Cell Biology"}
	lesson := &types.Lesson{
		ID:          lessonID,
		CourseID:    courseID,
		UnitID:      &unitID,
		Title:       "Cell Structure",
		ContentType: "markdown",
		ContentBody: "Cells are the basic structural unit of all known organisms.",
	}
	docRepo := &fakeDocumentRepo{}

	svc := NewDocumentGenerationService(
		&fakeCourseRepo{course: course},
		&fakeUnitRepo{unit: unit},
		&fakeLessonRepo{lesson: lesson},
		&fakeCompetencyRepo{competencies: []*types.Competency{
			{ID: uuid.New(), CourseID: courseID, Code: "BIO-1", Title: "Describe cell structure"},
		}},
		&fakeActivityRepo{activities: []*types.Activity{
			{ID: uuid.New(), LessonID: lessonID, Type: "discussion", Title: "Cell Debate", Instructions: "Split into pairs. Argue."},
		}},
		docRepo,
		storage,
		&fakeTemplateService{},
		log,
	)
	req := GenerateRequest{CourseID: courseID, LessonID: lessonID}
	return svc, docRepo, storage, req
}

func TestGenerateDocumentsBatch(t *testing.T) {
	svc, docRepo, storage, req := testFixture(t)
	req.DocumentTypes = []string{DocTypeStudentHandout, DocTypeInstructorGuide}

	created, err := svc.GenerateDocuments(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateDocuments: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d documents", len(created))
	}
	if len(docRepo.created) != 2 {
		t.Fatalf("repo recorded %d rows", len(docRepo.created))
	}

	for _, doc := range created {
		data, err := storage.Read(doc.StoragePath)
		if err != nil {
			t.Fatalf("stored file missing for %s: %v", doc.DocumentType, err)
		}
		if int64(len(data)) != doc.FileSize {
			t.Fatalf("file size mismatch for %s", doc.DocumentType)
		}
		sum := md5.Sum(data)
		if doc.Checksum != hex.EncodeToString(sum[:]) {
			t.Fatalf("checksum mismatch for %s", doc.DocumentType)
		}
		wantPrefix := fmt.Sprintf("%s/%s/%s-", req.CourseID, req.LessonID, doc.DocumentType)
		if !strings.HasPrefix(doc.StoragePath, wantPrefix) {
			t.Fatalf("storage path %q lacks prefix %q", doc.StoragePath, wantPrefix)
		}
		if doc.UnitID == nil {
			t.Fatalf("row for %s not stamped with the lesson's unit", doc.DocumentType)
		}
	}
	if created[0].Filename != "cell-structure.pdf" {
		t.Fatalf("handout filename = %q", created[0].Filename)
	}
	if created[1].Filename != "cell-structure.docx" {
		t.Fatalf("guide filename = %q", created[1].Filename)
	}
}

func TestGenerateDocumentsAbortsBatchOnFailure(t *testing.T) {
	svc, docRepo, _, req := testFixture(t)
	// slide-deck fails: the fake template service has no templates.
	req.DocumentTypes = []string{DocTypeStudentHandout, DocTypeSlideDeck}

	created, err := svc.GenerateDocuments(context.Background(), req)
	if created != nil {
		t.Fatal("failed batch returned documents")
	}
	var batchErr *docgen.BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if batchErr.DocumentType != DocTypeSlideDeck {
		t.Fatalf("failing type = %q", batchErr.DocumentType)
	}
	if len(docRepo.created) != 0 {
		t.Fatal("failed batch persisted rows")
	}
}

func TestGenerateDocumentsRejectsUnknownType(t *testing.T) {
	svc, _, _, req := testFixture(t)
	req.DocumentTypes = []string{"poster"}

	_, err := svc.GenerateDocuments(context.Background(), req)
	var batchErr *docgen.BatchError
	if !errors.As(err, &batchErr) || batchErr.DocumentType != "poster" {
		t.Fatalf("expected BatchError for unknown type, got %v", err)
	}
}

func TestGenerateDocumentsRejectsForeignLesson(t *testing.T) {
	svc, _, _, req := testFixture(t)
	req.CourseID = uuid.New() // course exists check fails first
	req.DocumentTypes = []string{DocTypeStudentHandout}

	if _, err := svc.GenerateDocuments(context.Background(), req); err == nil {
		t.Fatal("expected error for unknown course")
	}
}

func TestGenerateDocumentsRejectsUnitOutsideCourse(t *testing.T) {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	courseID := uuid.New()
	unitID := uuid.New()
	lessonID := uuid.New()
	// The unit exists but hangs off a different course.
	unit := &types.Unit{ID: unitID, CourseID: uuid.New(), Title: "Orphan Unit"}
	lesson := &types.Lesson{ID: lessonID, CourseID: courseID, UnitID: &unitID, Title: "Cell Structure"}

	svc := NewDocumentGenerationService(
		&fakeCourseRepo{course: &types.Course{ID: courseID, Title: "Intro Biology"}},
		&fakeUnitRepo{unit: unit},
		&fakeLessonRepo{lesson: lesson},
		&fakeCompetencyRepo{},
		&fakeActivityRepo{},
		&fakeDocumentRepo{},
		testStorage(t),
		&fakeTemplateService{},
		log,
	)
	req := GenerateRequest{CourseID: courseID, LessonID: lessonID, DocumentTypes: []string{DocTypeStudentHandout}}

	_, err = svc.GenerateDocuments(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "does not belong to course") {
		t.Fatalf("expected unit ownership error, got %v", err)
	}
}

func TestDeleteDocumentRemovesFileThenRow(t *testing.T) {
	svc, docRepo, storage, req := testFixture(t)
	req.DocumentTypes = []string{DocTypeStudentHandout}

	created, err := svc.GenerateDocuments(context.Background(), req)
	if err != nil {
		t.Fatalf("GenerateDocuments: %v", err)
	}
	doc := created[0]
	doc.ID = uuid.New()

	if err := svc.DeleteDocument(context.Background(), doc.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := storage.Read(doc.StoragePath); err == nil {
		t.Fatal("file still present after delete")
	}
	if len(docRepo.deleted) != 1 || docRepo.deleted[0] != doc.ID {
		t.Fatalf("row delete not recorded: %v", docRepo.deleted)
	}
}
