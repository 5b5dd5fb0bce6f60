package equipment

import (
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"

	"medirent/db"
	"medirent/utils"
)

const uploadDir = "./static/equipmentpic"

var supportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

func processImageUpload(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	img, err := imaging.Decode(src)
	if err != nil {
		return "", err
	}

	uniqueID := utils.GetUUID()
	fileName := uniqueID + ".jpg"
	thumbDir := filepath.Join(uploadDir, "thumb")

	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", err
	}
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", err
	}

	if err := imaging.Save(img, filepath.Join(uploadDir, fileName)); err != nil {
		return "", err
	}
	thumb := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(thumbDir, fileName)); err != nil {
		return "", err
	}

	return "/equipmentpic/" + fileName, nil
}

// UploadImage accepts a multipart image for an equipment item the caller
// owns, stores the original plus a 300px thumbnail, and records the URL.
func UploadImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	uid := utils.GetUserIDFromRequest(r)
	if uid == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id := ps.ByName("id")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	file.Close()

	if !supportedImageTypes[header.Header.Get("Content-Type")] {
		http.Error(w, "Invalid file type. Supported formats: JPEG, PNG, WebP.", http.StatusBadRequest)
		return
	}

	url, err := processImageUpload(header)
	if err != nil {
		http.Error(w, "Failed to process image", http.StatusInternalServerError)
		return
	}

	res, err := db.EquipmentCollection.UpdateOne(r.Context(),
		bson.M{"equipmentId": id, "providerId": uid},
		bson.M{"$set": bson.M{"imageUrl": url, "updatedAt": time.Now()}},
	)
	if err != nil {
		http.Error(w, "Failed to save image URL", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Equipment not found", http.StatusNotFound)
		return
	}
	invalidateListCache()

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "imageUrl": url})
}
